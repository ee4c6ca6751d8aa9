package detect

import (
	"testing"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

func TestDetectClassifiesFirstPage(t *testing.T) {
	cases := []struct {
		name      string
		firstPage string
		hint      domain.ContentType
		want      domain.ContentType
	}{
		{
			name:      "hint always wins",
			firstPage: "Chapter 1\nIntroduction",
			hint:      domain.ContentTypeDocument,
			want:      domain.ContentTypeDocument,
		},
		{
			name:      "title page with publisher signals",
			firstPage: "Commentary on the Constitution\nThird Edition\nPublished by Eastern Book Company\nISBN 978-93-5145",
			hint:      domain.ContentTypeAuto,
			want:      domain.ContentTypeBook,
		},
		{
			name:      "table of contents with many chapters",
			firstPage: "Contents\nChapter 1 Preliminary\nChapter 2 Of Punishments\nChapter 3 General Exceptions\nChapter 4 Of Abetment",
			hint:      domain.ContentTypeAuto,
			want:      domain.ContentTypeBook,
		},
		{
			name:      "chapter heading in opening lines",
			firstPage: "CHAPTER 17\nOf Offences Against Property\nTheft is defined as follows.",
			hint:      domain.ContentTypeAuto,
			want:      domain.ContentTypeChapter,
		},
		{
			name:      "lowercase numbered heading",
			firstPage: "5. force and motion\nA body at rest stays at rest.",
			hint:      domain.ContentTypeAuto,
			want:      domain.ContentTypeChapter,
		},
		{
			name:      "chapter heading too deep is ignored",
			firstPage: "line\nline\nline\nline\nline\nline\nChapter 2 starts here",
			hint:      domain.ContentTypeAuto,
			want:      domain.ContentTypeDocument,
		},
		{
			name:      "single book signal is not enough",
			firstPage: "This judgment cites the 2nd edition of the treatise.",
			hint:      domain.ContentTypeAuto,
			want:      domain.ContentTypeDocument,
		},
		{
			name:      "plain judgment text",
			firstPage: "IN THE SUPREME COURT OF INDIA\nCivil Appeal No. 123 of 2019",
			hint:      domain.ContentTypeAuto,
			want:      domain.ContentTypeDocument,
		},
		{
			name:      "empty first page fails open",
			firstPage: "",
			hint:      domain.ContentTypeAuto,
			want:      domain.ContentTypeDocument,
		},
	}

	d := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := d.Detect(tc.firstPage, tc.hint); got != tc.want {
				t.Fatalf("Detect() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPolicyForMatchesContentShape(t *testing.T) {
	d := New()

	if p := d.PolicyFor(domain.ContentTypeBook); p.MaxChunkSize != 2000 || p.Overlap != 200 {
		t.Fatalf("unexpected book policy: %+v", p)
	}
	if p := d.PolicyFor(domain.ContentTypeChapter); p.MaxChunkSize != 1500 || p.Overlap != 150 {
		t.Fatalf("unexpected chapter policy: %+v", p)
	}
	if p := d.PolicyFor(domain.ContentTypeDocument); p.MaxChunkSize != 3000 || p.Overlap != 200 {
		t.Fatalf("unexpected document policy: %+v", p)
	}
	if p := d.PolicyFor(domain.ContentTypeAuto); p.MaxChunkSize != 3000 {
		t.Fatalf("auto should fall back to document policy: %+v", p)
	}
}
