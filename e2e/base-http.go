package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration and skips when no board is reachable.
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.BoardAddr == "" {
		s.T().Skip("BOARD_ADDR not set, skipping end-to-end suite")
	}
	s.client = &http.Client{Timeout: 30 * time.Second}
}

// Do sends req against the board, logs a colorized step header and returns the status and body.
func (s *BaseHTTPSuite) Do(name string, req *http.Request) (int, []byte) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err, "Failed to reach board at "+s.Config.BoardAddr)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		var pretty bytes.Buffer
		if json.Indent(&pretty, body, "", "  ") == nil {
			fmt.Fprintln(&logBuilder, "\nRESPONSE:")
			fmt.Fprintln(&logBuilder, pretty.String())
		}
	}
	s.T().Log(logBuilder.String())
	return resp.StatusCode, body
}

func (s *BaseHTTPSuite) NewRequest(method, path string, body io.Reader) *http.Request {
	req, err := http.NewRequest(method, strings.TrimSuffix(s.Config.BoardAddr, "/")+path, body)
	s.Require().NoError(err)
	return req
}
