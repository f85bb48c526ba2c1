package staticcheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ahktools/ahkcheck/domain"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ahk")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSource_CleanFile(t *testing.T) {
	path := writeScript(t, "MsgBox hello\nreturn\n")

	diags, err := New().Diagnostics(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Errorf("clean file should produce no diagnostics, got %+v", diags)
	}
}

func TestSource_TrailingWhitespace(t *testing.T) {
	path := writeScript(t, "MsgBox hello   \nreturn\n")

	diags, err := New().Diagnostics(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Line != 1 || d.Column != 13 {
		t.Errorf("expected finding at 1:13, got %d:%d", d.Line, d.Column)
	}
	if d.Severity != domain.SeverityHint {
		t.Errorf("trailing whitespace should be a hint, got %s", d.Severity)
	}
	if d.Source != "static" {
		t.Errorf("source should be static, got %q", d.Source)
	}
}

func TestSource_UnterminatedBlockComment(t *testing.T) {
	path := writeScript(t, "MsgBox hi\n/*\nnever closed\n")

	diags, err := New().Diagnostics(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Line != 2 || diags[0].Severity != domain.SeverityError {
		t.Errorf("expected error at the comment opening line, got %+v", diags[0])
	}
}

func TestSource_ClosedBlockCommentSuppressesChecks(t *testing.T) {
	// Content inside a closed block comment is not checked
	inner := "some very trailing whitespace   "
	path := writeScript(t, "/*\n"+inner+"\n*/\nreturn\n")

	diags, err := New().Diagnostics(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Errorf("commented-out content should not be checked, got %+v", diags)
	}
}

func TestSource_LongLine(t *testing.T) {
	long := make([]byte, MaxLineLength+10)
	for i := range long {
		long[i] = 'x'
	}
	path := writeScript(t, string(long)+"\n")

	diags, err := New().Diagnostics(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 1 || diags[0].Severity != domain.SeverityInfo {
		t.Errorf("expected one info diagnostic for the long line, got %+v", diags)
	}
}

func TestSource_MissingFile(t *testing.T) {
	_, err := New().Diagnostics(context.Background(), "/nonexistent/file.ahk")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}

	var domainErr domain.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeFileNotFound {
		t.Errorf("expected FILE_NOT_FOUND domain error, got %v", err)
	}
}
