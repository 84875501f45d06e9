package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// Keep pdfcpu from creating a configuration directory on disk
	model.ConfigPath = "disable"
}

// pageBox describes a page's MediaBox as seen by pdfcpu
type pageBox struct {
	viewport Viewport
	originX  float64
	originY  float64
	rotation int
}

// inspection is the result of validating a document with pdfcpu
type inspection struct {
	pageCount int
	boxes     []pageBox
}

// maxTreeDepth bounds walks up the page tree
const maxTreeDepth = 32

// letterBox is the geometry assumed for pages without a MediaBox
func letterBox() pageBox {
	return pageBox{viewport: Viewport{Width: 612, Height: 792}}
}

// boxFromCorners builds page geometry from two opposite MediaBox corners
func boxFromCorners(x0, y0, x1, y1 float64) pageBox {
	left, right := min(x0, x1), max(x0, x1)
	bottom, top := min(y0, y1), max(y0, y1)
	if right-left <= 0 || top-bottom <= 0 {
		return letterBox()
	}
	return pageBox{
		viewport: Viewport{Width: right - left, Height: top - bottom},
		originX:  left,
		originY:  bottom,
	}
}

// inspectSource collects page geometry from a text backend. Used when
// pdfcpu cannot read the document.
func inspectSource(source glyphSource) *inspection {
	result := &inspection{
		pageCount: source.NumPage(),
		boxes:     make([]pageBox, source.NumPage()),
	}
	for i := range result.boxes {
		result.boxes[i] = source.pageBox(i + 1)
	}
	return result
}

// inspectPDF validates the bytes with pdfcpu and collects page geometry
func inspectPDF(src []byte) (*inspection, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(src), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	result := &inspection{
		pageCount: ctx.PageCount,
		boxes:     make([]pageBox, ctx.PageCount),
	}

	for i := 1; i <= ctx.PageCount; i++ {
		box, err := readPageBox(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect page %d: %w", i, err)
		}
		result.boxes[i-1] = box
	}

	return result, nil
}

// readPageBox reads the MediaBox and rotation of a page
func readPageBox(ctx *model.Context, pageNumber int) (pageBox, error) {
	pageDict, _, attrs, err := ctx.PageDict(pageNumber, false)
	if err != nil {
		return pageBox{}, fmt.Errorf("failed to get page dict: %w", err)
	}

	box := letterBox()
	if attrs != nil && attrs.MediaBox != nil {
		box = boxFromCorners(attrs.MediaBox.LL.X, attrs.MediaBox.LL.Y, attrs.MediaBox.UR.X, attrs.MediaBox.UR.Y)
	}

	// Rotation from inherited attributes first, then from the page dict
	if attrs != nil {
		box.rotation = attrs.Rotate
	} else if rot := pageDict["Rotate"]; rot != nil {
		if rotInt, ok := rot.(types.Integer); ok {
			box.rotation = int(rotInt)
		}
	}

	return box, nil
}
