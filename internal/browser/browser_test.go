package browser

import (
	"slices"
	"testing"
)

func TestCheckRejectsNonHTTP(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://images.example.com/tomato.jpg", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		err := Check(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("Check(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Check(%q): unexpected error %v", tt.url, err)
		}
	}
}

func TestOpenValidatesBeforeLaunching(t *testing.T) {
	if err := Open("file:///etc/passwd"); err == nil {
		t.Error("Open should refuse a file URL")
	}
}

func TestCommand(t *testing.T) {
	const u = "https://example.com/a.png"
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"darwin", "open", []string{u}},
		{"linux", "xdg-open", []string{u}},
		{"freebsd", "xdg-open", []string{u}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", u}},
	}
	for _, tt := range tests {
		name, args := command(tt.goos, u)
		if name != tt.name || !slices.Equal(args, tt.args) {
			t.Errorf("command(%q) = %s %v, want %s %v", tt.goos, name, args, tt.name, tt.args)
		}
	}
}
