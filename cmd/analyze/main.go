// Command analyze uploads one screenshot to a running analyzer and prints the result.
//
//	analyze -url http://localhost:8080 screenshot.png
//	analyze -export aapl.xlsx screenshot.png
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/portfolio-grader/constants"
	"github.com/joseph-ayodele/portfolio-grader/internal/server"
	applog "github.com/joseph-ayodele/portfolio-grader/pkg/logger"
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8080", "analyzer base URL")
		out     = flag.String("export", "", "write the XLSX export to this path instead of printing JSON")
		timeout = flag.Duration("timeout", 2*time.Minute, "request timeout")
	)
	flag.Parse()

	log, err := applog.NewSugared("info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: analyze [-url URL] [-export out.xlsx] <image>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	body, contentType, err := buildMultipart(path)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}

	endpoint := *baseURL + server.PathAnalyze
	if *out != "" {
		endpoint = *baseURL + server.PathExport
	}

	client := &http.Client{Timeout: *timeout}
	start := time.Now()
	resp, err := client.Post(endpoint, contentType, body)
	if err != nil {
		log.Fatalf("post %s: %v", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}
	log.Infow("analyze.response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		fmt.Fprintf(os.Stderr, "%s\n", raw)
		os.Exit(1)
	}

	if *out != "" {
		if err := os.WriteFile(*out, raw, 0o644); err != nil {
			log.Fatalf("write %s: %v", *out, err)
		}
		fmt.Println(*out)
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		os.Stdout.Write(raw)
		return
	}
	fmt.Println(pretty.String())
}

func buildMultipart(path string) (*bytes.Buffer, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, constants.ScreenshotField, filepath.Base(path)))
	h.Set("Content-Type", constants.MimeForExt(filepath.Ext(path)))
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
