package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testBoardSuite struct {
	BaseHTTPSuite
}

func TestBoardSuite(t *testing.T) {
	suite.Run(t, &testBoardSuite{})
}

type message struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Files struct {
		Image *string `json:"image"`
	} `json:"files"`
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func (s *testBoardSuite) TestPostListDelete() {
	name := "e2e-" + uuid.NewString()[:8]
	var posted message
	var token string

	s.Run("Step 1: Post a message with an image", func() {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		s.Require().NoError(w.WriteField("name", name))
		s.Require().NoError(w.WriteField("message", "hello from the e2e suite"))
		part, err := w.CreateFormFile("image", "cat.png")
		s.Require().NoError(err)
		_, err = part.Write(pngHeader)
		s.Require().NoError(err)
		s.Require().NoError(w.Close())

		req := s.NewRequest(http.MethodPost, "/messages", body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		status, raw := s.Do("Post message", req)
		s.Require().Equal(http.StatusCreated, status, string(raw))
		s.Require().NoError(json.Unmarshal(raw, &posted))
		s.Require().NotNil(posted.Files.Image)
	})

	s.Run("Step 2: The message is listed and its image is served", func() {
		s.Require().NotNil(posted.Files.Image, "nothing was posted")
		status, raw := s.Do("List messages", s.NewRequest(http.MethodGet, "/messages", nil))
		s.Require().Equal(http.StatusOK, status)
		var messages []message
		s.Require().NoError(json.Unmarshal(raw, &messages))
		_, found := lo.Find(messages, func(item message) bool { return item.ID == posted.ID })
		s.Require().True(found)

		status, raw = s.Do("Fetch image", s.NewRequest(http.MethodGet, *posted.Files.Image, nil))
		s.Require().Equal(http.StatusOK, status)
		s.Require().Equal(pngHeader, raw)
	})

	s.Run("Step 3: Admin login", func() {
		if s.Config.AdminPassword == "" {
			s.T().Skip("ADMIN_PASSWORD not set")
		}
		req := s.NewRequest(http.MethodPost, "/admin/login",
			bytes.NewBufferString(fmt.Sprintf(`{"password":%q}`, s.Config.AdminPassword)))
		status, raw := s.Do("Login", req)
		s.Require().Equal(http.StatusOK, status)
		var resp struct {
			Token string `json:"token"`
		}
		s.Require().NoError(json.Unmarshal(raw, &resp))
		token = resp.Token
	})

	s.Run("Step 4: Delete the message", func() {
		if token == "" {
			s.T().Skip("no admin token")
		}
		req := s.NewRequest(http.MethodDelete, "/messages/"+posted.ID, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		status, _ := s.Do("Delete message", req)
		s.Require().Equal(http.StatusNoContent, status)

		status, raw := s.Do("List after delete", s.NewRequest(http.MethodGet, "/messages", nil))
		s.Require().Equal(http.StatusOK, status)
		var messages []message
		s.Require().NoError(json.Unmarshal(raw, &messages))
		s.Require().False(lo.ContainsBy(messages, func(item message) bool { return item.ID == posted.ID }))
	})
}
