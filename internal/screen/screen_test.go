package screen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/hamen/android-mcp/internal/model"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcess_Passthrough(t *testing.T) {
	src := testPNG(t, 40, 80)
	got, err := Process(src, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Data, src) {
		t.Error("expected original bytes")
	}
	if got.MIMEType != "image/png" || got.Width != 40 || got.Height != 80 {
		t.Errorf("unexpected image %s %dx%d", got.MIMEType, got.Width, got.Height)
	}
}

func TestProcess_ScaleAndJPEG(t *testing.T) {
	got, err := Process(testPNG(t, 100, 200), Options{Scale: 0.5, Format: "jpg", Quality: 60})
	if err != nil {
		t.Fatal(err)
	}
	if got.MIMEType != "image/jpeg" {
		t.Errorf("mime = %s", got.MIMEType)
	}
	if got.Width != 50 || got.Height != 100 {
		t.Errorf("size = %dx%d, want 50x100", got.Width, got.Height)
	}
	if !bytes.HasPrefix(got.Data, []byte{0xff, 0xd8}) {
		t.Error("expected JPEG data")
	}
}

func TestProcess_InvalidOptions(t *testing.T) {
	src := testPNG(t, 10, 10)
	tests := []struct {
		name string
		opts Options
	}{
		{"scale too big", Options{Scale: 2}},
		{"negative scale", Options{Scale: -0.5}},
		{"format", Options{Format: "gif"}},
		{"quality", Options{Format: FormatJPEG, Quality: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Process(src, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProcess_NotAnImage(t *testing.T) {
	if _, err := Process([]byte("nope"), Options{}); err == nil {
		t.Error("expected decode error")
	}
}

func TestAnnotate_DrawsBox(t *testing.T) {
	src, err := png.Decode(bytes.NewReader(testPNG(t, 200, 200)))
	if err != nil {
		t.Fatal(err)
	}
	nodes := []model.FlatNode{
		{Text: model.Str("OK"), Bounds: model.Str("[10,10][110,60]")},
		{Text: model.Str("bad"), Bounds: model.Str("garbage")},
	}
	out := Annotate(src, nodes)

	if got := out.RGBAAt(10, 30); got == (color.RGBA{R: 40, G: 40, B: 40, A: 255}) {
		t.Error("expected box edge at left border")
	}
	if got := out.RGBAAt(180, 180); got != (color.RGBA{R: 40, G: 40, B: 40, A: 255}) {
		t.Errorf("pixel outside box changed: %v", got)
	}
}

func TestLabeled(t *testing.T) {
	tests := []struct {
		name string
		n    model.FlatNode
		want bool
	}{
		{"text", model.FlatNode{Text: model.Str("Hi"), Bounds: model.Str("[0,0][1,1]")}, true},
		{"resource id", model.FlatNode{ResourceID: model.Str("a:id/b"), Bounds: model.Str("[0,0][1,1]")}, true},
		{"empty strings", model.FlatNode{Text: model.Str(""), ContentDesc: model.Str(""), Bounds: model.Str("[0,0][1,1]")}, false},
		{"no bounds", model.FlatNode{Text: model.Str("Hi")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Labeled(tt.n); got != tt.want {
				t.Errorf("Labeled() = %v, want %v", got, tt.want)
			}
		})
	}
}
