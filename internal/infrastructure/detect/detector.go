// Package detect classifies a document's first page as a book, a chapter,
// or a plain document, and selects the chunking policy for each shape.
// Classification is pure and fails open: anything unclear is a document.
package detect

import (
	"regexp"
	"strings"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

var bookIndicators = []*regexp.Regexp{
	regexp.MustCompile(`\bedition\b`),
	regexp.MustCompile(`\bisbn[\s\-:]*\d`),
	regexp.MustCompile(`\bcopyright\s*©?\s*\d{4}`),
	regexp.MustCompile(`\bpublished\s+by\b`),
	regexp.MustCompile(`\b(?:university|academic)\s+press\b`),
}

var tocChapterPattern = regexp.MustCompile(`chapter\s+\d+`)

var chapterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^chapter\s+\d+`),
	regexp.MustCompile(`(?im)^ch\.?\s*\d+`),
	regexp.MustCompile(`(?im)^\d+\.\s+[a-z]`),
	regexp.MustCompile(`(?m)^CHAPTER\s+\d+`),
}

type Detector struct{}

func New() *Detector {
	return &Detector{}
}

// Detect classifies first-page text. An explicit non-auto hint always wins;
// empty text defaults to document so detection never blocks ingestion.
func (d *Detector) Detect(firstPage string, hint domain.ContentType) domain.ContentType {
	if hint != "" && hint != domain.ContentTypeAuto {
		return hint
	}
	if strings.TrimSpace(firstPage) == "" {
		return domain.ContentTypeDocument
	}
	if isBookFirstPage(firstPage) {
		return domain.ContentTypeBook
	}
	if isChapterFirstPage(firstPage) {
		return domain.ContentTypeChapter
	}
	return domain.ContentTypeDocument
}

// PolicyFor maps a content type to its chunking policy. Unrecognized or
// auto types get the document policy.
func (d *Detector) PolicyFor(contentType domain.ContentType) domain.ChunkPolicy {
	switch contentType {
	case domain.ContentTypeBook:
		return domain.ChunkPolicy{MaxChunkSize: 2000, Overlap: 200}
	case domain.ContentTypeChapter:
		return domain.ChunkPolicy{MaxChunkSize: 1500, Overlap: 150}
	default:
		return domain.ChunkPolicy{MaxChunkSize: 3000, Overlap: 200}
	}
}

// isBookFirstPage looks for a title page: two or more strong publisher
// signals, or a table of contents citing three or more chapters.
func isBookFirstPage(text string) bool {
	lower := strings.ToLower(text)

	strong := 0
	for _, pattern := range bookIndicators {
		if pattern.MatchString(lower) {
			strong++
		}
	}
	if strong >= 2 {
		return true
	}

	return len(tocChapterPattern.FindAllString(lower, -1)) >= 3
}

// isChapterFirstPage checks the first five lines for a chapter heading.
func isChapterFirstPage(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	head := strings.Join(lines, "\n")

	for _, pattern := range chapterPatterns {
		if pattern.MatchString(head) {
			return true
		}
	}
	return false
}
