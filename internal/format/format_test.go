package format

import (
	"net/url"
	"strings"
	"testing"

	"github.com/sabitutor/sabi/internal/prompt"
	"github.com/sabitutor/sabi/internal/visual"
)

func TestCleanWhatsApp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bold collapses to single asterisk",
			in:   "Electricity flows like **danfo traffic** in Lagos.",
			want: "Electricity flows like *danfo traffic* in Lagos.",
		},
		{
			name: "heading becomes emphasized line",
			in:   "## Ohm's Law\nVoltage drives current.",
			want: "*Ohm's Law*\nVoltage drives current.",
		},
		{
			name: "deep heading with bold",
			in:   "### **Key Idea**",
			want: "*Key Idea*",
		},
		{
			name: "inline math delimiters stripped",
			in:   "The formula is $V = IR$ as shown.",
			want: "The formula is V = IR as shown.",
		},
		{
			name: "display math delimiters stripped",
			in:   "So: $$E = mc^2$$",
			want: "So: E = mc^2",
		},
		{
			name: "latex bracket delimiters stripped",
			in:   `Consider \(F = ma\) and \[p = mv\].`,
			want: "Consider F = ma and p = mv.",
		},
		{
			name: "stripping delimiters exposes a heading marker",
			in:   "$#$ Ohm's Law",
			want: "*Ohm's Law*",
		},
		{
			name: "stripping delimiters merges emphasis runs",
			in:   `foo \(*\)\(*\) bar`,
			want: "foo * bar",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  \n*Hello!*\n\n",
			want: "*Hello!*",
		},
		{
			name: "plain text unchanged",
			in:   "Water boils at 100 degrees.",
			want: "Water boils at 100 degrees.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanWhatsApp(tt.in); got != tt.want {
				t.Errorf("CleanWhatsApp(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Applying the cleanup twice must equal applying it once.
func TestCleanWhatsAppIdempotent(t *testing.T) {
	inputs := []string{
		"## Heading\n**bold** and $math$ mixed \\(inline\\)",
		"*already* clean text",
		"**a** and **b** and ***c***",
		"# Only Heading",
		"",
		// Delimiter stripping must not surface markers that need another pass.
		`foo \(*\)\(*\) bar`,
		"$#$ Ohm's Law",
		"*$*$",
		"$$*$$*",
	}

	for _, in := range inputs {
		once := CleanWhatsApp(in)
		twice := CleanWhatsApp(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestExpandImageTags(t *testing.T) {
	visuals := visual.NewBuilder("https://image.pollinations.ai")

	t.Run("single tag", func(t *testing.T) {
		got := ExpandImageTags("See [IMAGE: a circuit]", visuals)

		if !strings.HasPrefix(got, "See ![a circuit](https://image.pollinations.ai/prompt/") {
			t.Fatalf("unexpected expansion: %q", got)
		}

		start := strings.Index(got, "/prompt/") + len("/prompt/")
		end := strings.Index(got, "?")
		decoded, err := url.PathUnescape(got[start:end])
		if err != nil {
			t.Fatalf("decoding prompt segment: %v", err)
		}
		if decoded != "educational vector diagram of a circuit, clean minimalist style, white background" {
			t.Errorf("decoded prompt = %q", decoded)
		}
	})

	t.Run("multiple tags expand independently", func(t *testing.T) {
		got := ExpandImageTags("[IMAGE: a cell] then [IMAGE: a leaf]", visuals)

		if strings.Contains(got, "[IMAGE:") {
			t.Errorf("unexpanded tag remains: %q", got)
		}
		if !strings.Contains(got, "![a cell](") || !strings.Contains(got, "![a leaf](") {
			t.Errorf("tags not expanded independently: %q", got)
		}
	})

	t.Run("no tags returns input unchanged", func(t *testing.T) {
		in := "Plain explanation with **markdown** and $math$ but no tags."
		if got := ExpandImageTags(in, visuals); got != in {
			t.Errorf("input with no tags modified: %q", got)
		}
	})
}

func TestProcessorApply(t *testing.T) {
	p := NewProcessor(visual.NewBuilder("https://image.pollinations.ai"))

	whatsapp := p.Apply("**Bold** and $V=IR$", prompt.Profile{Audience: prompt.AudienceWhatsApp})
	if whatsapp != "*Bold* and V=IR" {
		t.Errorf("whatsapp Apply = %q", whatsapp)
	}

	web := p.Apply("See [IMAGE: a prism]", prompt.Profile{Audience: prompt.AudienceWeb})
	if !strings.Contains(web, "![a prism](") {
		t.Errorf("web Apply did not expand tag: %q", web)
	}
	if strings.Contains(web, "[IMAGE:") {
		t.Errorf("web Apply left raw tag: %q", web)
	}
}
