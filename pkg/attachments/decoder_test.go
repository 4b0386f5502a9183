package attachments

import (
	"errors"
	"testing"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

func TestDecode(t *testing.T) {
	got, err := Decode([]entities.Attachment{
		{Name: "data.csv", URL: "data:text/csv;base64,cHJvZHVjdCxzYWxlcwpBLDEwMApCLDE1MA=="},
		{Name: "input.md", URL: "data:text/markdown;base64,IyBIaQ"},
		{Name: "note.txt", URL: "data:,hello%20world"},
		{Name: "logo.png", URL: "https://example.com/logo.png"},
	})
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	cases := map[string]string{
		"data.csv": "product,sales\nA,100\nB,150",
		"input.md": "# Hi",
		"note.txt": "hello world",
		"logo.png": "https://example.com/logo.png",
	}
	for name, want := range cases {
		if string(got[name]) != want {
			t.Errorf("%s: got %q want %q", name, got[name], want)
		}
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		items []entities.Attachment
	}{
		{name: "missing name", items: []entities.Attachment{{URL: "data:,x"}}},
		{name: "duplicate name", items: []entities.Attachment{{Name: "a", URL: "x"}, {Name: "a", URL: "y"}}},
		{name: "no separator", items: []entities.Attachment{{Name: "a", URL: "data:text/plain;base64"}}},
		{name: "bad base64", items: []entities.Attachment{{Name: "a", URL: "data:text/plain;base64,@@@"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.items)
			if !errors.Is(err, ErrInvalidAttachment) {
				t.Fatalf("expected ErrInvalidAttachment, got %v", err)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no attachments, got %d", len(got))
	}
}
