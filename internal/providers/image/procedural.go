package image

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
)

// Procedural draws a layered paper-cut style SVG derived from the prompt. It
// never touches the network and never fails, so it is the last line of the
// fallback chain.
type Procedural struct {
	id string
}

// NewProcedural returns the generator registered as id.
func NewProcedural(id string) *Procedural {
	return &Procedural{id: id}
}

func (p *Procedural) Name() string { return p.id }

// Generate fulfils the Generator interface.
func (p *Procedural) Generate(_ context.Context, req Request) (Result, error) {
	return Result{
		Provider:  p.id,
		Requested: p.id,
		Model:     "svg",
		Ref:       domain.SVGRef(RenderPaperCut(req.Prompt)),
	}, nil
}

var _ Generator = (*Procedural)(nil)

type palette struct {
	paper  string
	layers [4]string
	accent string
}

var palettes = []palette{
	{paper: "#f6efe3", layers: [4]string{"#1f3b57", "#2e5a7a", "#4a7fa3", "#86b3cf"}, accent: "#c8102e"},
	{paper: "#fbf4e8", layers: [4]string{"#3b1f2b", "#6b2d3e", "#a23b52", "#d9778a"}, accent: "#e8b84a"},
	{paper: "#eef3ea", layers: [4]string{"#1e3a2b", "#2f5d43", "#4f8a63", "#93c29f"}, accent: "#d1495b"},
	{paper: "#f3eef8", layers: [4]string{"#241a3b", "#3c2d66", "#5f4b9a", "#a28fd4"}, accent: "#f2c14e"},
	{paper: "#111111", layers: [4]string{"#f4f1ea", "#d8d2c4", "#b7ae9b", "#8a8170"}, accent: "#c8102e"},
}

// RenderPaperCut returns a deterministic SVG document for prompt. The same
// prompt always yields the same picture.
func RenderPaperCut(prompt string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(prompt)))
	rnd := newHashStream(sum)
	pal := palettes[rnd.next()%uint32(len(palettes))]

	const size = 1024
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, size, size, size, size)
	fmt.Fprintf(&b, `<title>%s</title>`, html.EscapeString(prompt))
	b.WriteString(`<defs><filter id="cut" x="-10%" y="-10%" width="120%" height="120%">`)
	b.WriteString(`<feDropShadow dx="6" dy="8" stdDeviation="6" flood-color="#000" flood-opacity="0.35"/></filter></defs>`)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, size, size, pal.paper)

	// moon
	cx := 250 + int(rnd.next()%520)
	cy := 170 + int(rnd.next()%160)
	r := 90 + int(rnd.next()%70)
	fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="%s" filter="url(#cut)"/>`, cx, cy, r, pal.accent)

	// hills, back to front
	for i := 3; i >= 0; i-- {
		base := 560 + (3-i)*110
		fmt.Fprintf(&b, `<path d="%s" fill="%s" filter="url(#cut)"/>`, ridgePath(rnd, size, base, 70-10*i), pal.layers[i])
	}

	// blossom
	petals := 5 + int(rnd.next()%4)
	fx := 200 + float64(rnd.next()%624)
	fy := 620 + float64(rnd.next()%200)
	b.WriteString(`<g filter="url(#cut)">`)
	for i := 0; i < petals; i++ {
		angle := float64(i) * 360 / float64(petals)
		fmt.Fprintf(&b, `<ellipse cx="%.1f" cy="%.1f" rx="26" ry="58" fill="%s" transform="rotate(%.1f %.1f %.1f)"/>`,
			fx, fy-52, pal.accent, angle, fx, fy)
	}
	fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="18" fill="%s"/>`, fx, fy, pal.paper)
	b.WriteString(`</g>`)

	// cut border
	fmt.Fprintf(&b, `<path d="%s" fill="%s" fill-rule="evenodd"/>`, borderPath(size, 36, 18), pal.layers[0])
	b.WriteString(`</svg>`)
	return b.String()
}

func ridgePath(rnd *hashStream, size, base, amplitude int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "M0 %d", size)
	steps := 8
	for i := 0; i <= steps; i++ {
		x := float64(size) * float64(i) / float64(steps)
		jitter := float64(int(rnd.next()%uint32(2*amplitude+1)) - amplitude)
		y := float64(base) + jitter + 20*math.Sin(float64(i))
		fmt.Fprintf(&b, " L%.1f %.1f", x, y)
	}
	fmt.Fprintf(&b, " L%d %d Z", size, size)
	return b.String()
}

// borderPath cuts a scalloped frame: an outer square minus an inner one with
// notches.
func borderPath(size, width, notch int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "M0 0 H%d V%d H0 Z ", size, size)
	inner := size - width
	fmt.Fprintf(&b, "M%d %d", width, width)
	for x := width; x < inner; x += notch * 2 {
		fmt.Fprintf(&b, " L%d %d L%d %d", x+notch, width+notch/2, min(x+notch*2, inner), width)
	}
	fmt.Fprintf(&b, " L%d %d L%d %d Z", inner, inner, width, inner)
	return b.String()
}

type hashStream struct {
	seed [32]byte
	pos  int
	gen  uint32
}

func newHashStream(seed [32]byte) *hashStream {
	return &hashStream{seed: seed}
}

func (h *hashStream) next() uint32 {
	if h.pos+4 > len(h.seed) {
		h.gen++
		var buf [36]byte
		copy(buf[:], h.seed[:])
		binary.BigEndian.PutUint32(buf[32:], h.gen)
		h.seed = sha256.Sum256(buf[:])
		h.pos = 0
	}
	v := binary.BigEndian.Uint32(h.seed[h.pos : h.pos+4])
	h.pos += 4
	return v
}
