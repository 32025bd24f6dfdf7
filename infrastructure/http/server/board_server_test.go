package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"message-board/attachments"
	"message-board/auth"
	"message-board/domain"
	"message-board/errors"
	"message-board/mocks"
	"message-board/services"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const adminPassword = "correct horse battery staple"

type fixture struct {
	board     *mocks.MockIBoardService
	resolver  attachments.Resolver
	tokenizer auth.Tokenizer
	handler   http.Handler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)
	tokenizer := auth.NewTokenizer("test-secret", time.Hour)
	resolver := attachments.NewResolver(t.TempDir())
	board := mocks.NewMockIBoardService(ctrl)

	srv := NewBoardServer(log, board, services.NewAdminService(hash, tokenizer, log), tokenizer, resolver, 1<<20)
	return fixture{board: board, resolver: resolver, tokenizer: tokenizer, handler: srv.Router()}
}

func (f fixture) adminToken(t *testing.T) string {
	t.Helper()
	token, err := f.tokenizer.Generate(auth.RoleAdmin, []string{auth.RoleAdmin})
	require.NoError(t, err)
	return token
}

func (f fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, file := range files {
		part, err := w.CreateFormFile(field, file[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(file[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestBoardServer_ListMessages(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	records := []domain.MessageRecord{
		{ID: "a2", Name: "Bob", Message: "yo", Timestamp: "2024-06-01 12:00:01"},
		{ID: "a1", Name: "Alice", Message: "hi", Timestamp: "2024-06-01 12:00:00",
			Attachments: domain.Attachments{Image: lo.ToPtr(f.resolver.ToLoadForm(domain.Image, "a1_cat.png"))}},
	}
	f.board.EXPECT().List().Return(records, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/messages", nil))
	req.Equal(http.StatusOK, rec.Code)

	var got []messageResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	req.Len(got, 2)
	req.Equal("a2", got[0].ID)
	req.Nil(got[0].Files.Image)
	req.Equal("/uploads/images/a1_cat.png", *got[1].Files.Image)
	req.Nil(got[1].Files.Audio)
}

func TestBoardServer_ListMessages_MalformedStore(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.board.EXPECT().List().Return(nil, fmt.Errorf("%w: not a list", errors.ErrMalformedStore))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/messages", nil))
	req.Equal(http.StatusInternalServerError, rec.Code)
	req.Contains(rec.Body.String(), "malformed")
}

func TestBoardServer_PostMessage(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.board.EXPECT().Post(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.PostMessageCommand) (domain.MessageRecord, error) {
			req.Equal("Alice", cmd.Name)
			req.Equal("hi", cmd.Message)
			req.Len(cmd.Uploads, 2)
			image, ok := lo.Find(cmd.Uploads, func(item domain.Upload) bool { return item.Kind == domain.Image })
			req.True(ok)
			req.Equal("cat.png", image.Filename)
			req.Equal([]byte("png-bytes"), image.Data)
			return domain.MessageRecord{ID: "m1", Name: "Alice", Message: "hi", Timestamp: "2024-06-01 12:00:00",
				Attachments: domain.Attachments{Image: lo.ToPtr(f.resolver.ToLoadForm(domain.Image, "m1_cat.png"))}}, nil
		})

	body, contentType := multipartBody(t,
		map[string]string{"name": "Alice", "message": "hi"},
		map[string][2]string{"image": {"cat.png", "png-bytes"}, "audio": {"purr.mp3", "mp3-bytes"}})
	r := httptest.NewRequest(http.MethodPost, "/messages", body)
	r.Header.Set("Content-Type", contentType)

	rec := f.do(r)
	req.Equal(http.StatusCreated, rec.Code)
	var got messageResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	req.Equal("m1", got.ID)
	req.Equal("/uploads/images/m1_cat.png", *got.Files.Image)
}

func TestBoardServer_PostMessage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"invalid record", errors.ErrInvalidRecord, http.StatusBadRequest},
		{"unsupported media", errors.ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
		{"write failed", errors.ErrWriteFailed, http.StatusServiceUnavailable},
		{"store unavailable", errors.ErrStoreUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			f := newFixture(t)
			f.board.EXPECT().Post(gomock.Any(), gomock.Any()).Return(domain.MessageRecord{}, tt.serviceErr)

			body, contentType := multipartBody(t, map[string]string{"name": "Alice", "message": "hi"}, nil)
			r := httptest.NewRequest(http.MethodPost, "/messages", body)
			r.Header.Set("Content-Type", contentType)
			req.Equal(tt.wantStatus, f.do(r).Code)
		})
	}
}

func TestBoardServer_PostMessage_UnknownFileField(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.board.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)

	body, contentType := multipartBody(t,
		map[string]string{"name": "Alice", "message": "hi"},
		map[string][2]string{"document": {"cv.pdf", "%PDF"}})
	r := httptest.NewRequest(http.MethodPost, "/messages", body)
	r.Header.Set("Content-Type", contentType)
	req.Equal(http.StatusBadRequest, f.do(r).Code)
}

func TestBoardServer_PostMessage_NotMultipart(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.board.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)

	r := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(`{"name":"Alice"}`))
	r.Header.Set("Content-Type", "application/json")
	req.Equal(http.StatusBadRequest, f.do(r).Code)
}

func TestBoardServer_PostMessage_TooLarge(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.board.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)

	body, contentType := multipartBody(t,
		map[string]string{"name": "Alice", "message": "hi"},
		map[string][2]string{"image": {"huge.png", strings.Repeat("x", 2<<20)}})
	r := httptest.NewRequest(http.MethodPost, "/messages", body)
	r.Header.Set("Content-Type", contentType)

	rec := f.do(r)
	req.Equal(http.StatusRequestEntityTooLarge, rec.Code)
	req.JSONEq(`{"error":"request body too large"}`, rec.Body.String())
}

func TestBoardServer_DeleteMessage(t *testing.T) {
	t.Run("without token", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		f.board.EXPECT().Delete(gomock.Any()).Times(0)

		rec := f.do(httptest.NewRequest(http.MethodDelete, "/messages/a1", nil))
		req.Equal(http.StatusUnauthorized, rec.Code)
	})

	t.Run("with a token lacking the admin role", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		f.board.EXPECT().Delete(gomock.Any()).Times(0)
		token, err := f.tokenizer.Generate("visitor", []string{"reader"})
		req.NoError(err)

		r := httptest.NewRequest(http.MethodDelete, "/messages/a1", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		req.Equal(http.StatusForbidden, f.do(r).Code)
	})

	t.Run("as admin", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		f.board.EXPECT().Delete("a1").Return(nil).Times(1)

		r := httptest.NewRequest(http.MethodDelete, "/messages/a1", nil)
		r.Header.Set("Authorization", "Bearer "+f.adminToken(t))
		req.Equal(http.StatusNoContent, f.do(r).Code)
	})
}

func TestBoardServer_Login(t *testing.T) {
	t.Run("valid password", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		r := httptest.NewRequest(http.MethodPost, "/admin/login",
			strings.NewReader(fmt.Sprintf(`{"password":%q}`, adminPassword)))
		rec := f.do(r)
		req.Equal(http.StatusOK, rec.Code)

		var got loginResponse
		req.NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		claims, err := f.tokenizer.Validate(got.Token)
		req.NoError(err)
		req.True(claims.HasRole(auth.RoleAdmin))
	})

	t.Run("wrong password", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		r := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"nope"}`))
		req.Equal(http.StatusUnauthorized, f.do(r).Code)
	})

	t.Run("garbage body", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		r := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`password=`))
		req.Equal(http.StatusUnauthorized, f.do(r).Code)
	})
}

func TestBoardServer_CollectOrphans(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.board.EXPECT().CollectOrphans(gomock.Any()).Return(attachments.GCResult{Scanned: 3, Deleted: 1}, nil)

	r := httptest.NewRequest(http.MethodPost, "/admin/gc", nil)
	r.Header.Set("Authorization", "Bearer "+f.adminToken(t))
	rec := f.do(r)
	req.Equal(http.StatusOK, rec.Code)

	var got attachments.GCResult
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	req.Equal(3, got.Scanned)
	req.Equal(1, got.Deleted)
}

func TestBoardServer_ServeUpload(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	req.NoError(f.resolver.EnsureDirs())
	req.NoError(os.WriteFile(f.resolver.ToLoadForm(domain.Image, "m1_cat.png"), []byte("png-bytes"), 0o600))
	req.NoError(os.WriteFile(filepath.Join(f.resolver.KindDir(domain.Image), ".m1_dog.png.123.tmp"), []byte("partial"), 0o600))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/uploads/images/m1_cat.png", nil))
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("png-bytes", rec.Body.String())

	for _, target := range []string{
		"/uploads/images/missing.png",
		"/uploads/images/.m1_dog.png.123.tmp",
		"/uploads/documents/m1_cat.png",
		"/uploads/image/m1_cat.png",
		"/uploads/m1_cat.png",
	} {
		req.Equal(http.StatusNotFound, f.do(httptest.NewRequest(http.MethodGet, target, nil)).Code, target)
	}
}

func TestBoardServer_Metrics(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.board.EXPECT().List().Return(nil, nil)
	f.do(httptest.NewRequest(http.MethodGet, "/messages", nil))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `board_http_requests_total{method="GET",route="/messages",status="200"}`)
}
