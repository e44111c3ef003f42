package cli

import (
	"context"
	"strings"
	"testing"
)

func TestCompletionScripts(t *testing.T) {
	isolate(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			code, stdout, _ := execute(context.Background(), "completion", shell)
			if code != 0 {
				t.Fatalf("exit code = %d, want 0", code)
			}
			if !strings.Contains(stdout, "skeletonize") {
				t.Errorf("%s script does not mention skeletonize", shell)
			}
		})
	}
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	isolate(t)
	if code, _, _ := execute(context.Background(), "completion", "tcsh"); code == 0 {
		t.Error("expected non-zero exit for unknown shell")
	}
}

func TestFlagCompletion(t *testing.T) {
	isolate(t)
	tests := []struct {
		args []string
		want []string
		not  []string
	}{
		{[]string{"run", "--input", ""}, []string{"png", "jpeg", "webp"}, nil},
		{[]string{"run", "--output", ""}, []string{"png", "bmp", "tiff"}, []string{"jpeg", "webp"}},
		{[]string{"graph", "--output", ""}, []string{"json", "dot", "svg"}, []string{"png"}},
		{[]string{"inspect", "--input", ""}, []string{"png", "gif"}, nil},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[:2], " "), func(t *testing.T) {
			args := append([]string{"__complete"}, tt.args...)
			_, stdout, _ := execute(context.Background(), args...)
			lines := strings.Split(strings.TrimSpace(stdout), "\n")
			got := map[string]bool{}
			for _, l := range lines {
				got[l] = true
			}
			for _, w := range tt.want {
				if !got[w] {
					t.Errorf("completions %q missing %q", lines, w)
				}
			}
			for _, n := range tt.not {
				if got[n] {
					t.Errorf("completions %q should not offer %q", lines, n)
				}
			}
			// 8 is cobra.ShellCompDirectiveFilterFileExt.
			if last := lines[len(lines)-1]; last != ":8" {
				t.Errorf("directive = %q, want :8", last)
			}
		})
	}
}
