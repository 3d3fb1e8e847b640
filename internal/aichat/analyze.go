package aichat

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxAnalyzeSize bounds files accepted by analyze-file.
const MaxAnalyzeSize = 2 << 20

var (
	ErrUnsupportedFile = errors.New("unsupported file type, upload a .txt, .md, .csv or .json file")
	ErrFileTooLarge    = errors.New("file exceeds the 2 MB limit")
)

var textExtensions = map[string]bool{".txt": true, ".md": true, ".markdown": true, ".csv": true, ".json": true}

// extractText returns the contents of a text-like upload.
func extractText(fh *multipart.FileHeader) (string, error) {
	if !textExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
		return "", ErrUnsupportedFile
	}
	if fh.Size > MaxAnalyzeSize {
		return "", ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, MaxAnalyzeSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(b) > MaxAnalyzeSize {
		return "", ErrFileTooLarge
	}
	if !utf8.Valid(b) {
		return "", ErrUnsupportedFile
	}
	return string(b), nil
}

func analyzePrompt(fileName, text, request string) string {
	if strings.TrimSpace(request) == "" {
		request = "Summarise this document and point out what matters for an early-stage founder."
	}
	return fmt.Sprintf("File: %s\n\n%s\n\nRequest: %s", fileName, text, request)
}
