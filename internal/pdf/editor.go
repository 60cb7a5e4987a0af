package pdf

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
	"github.com/nao1215/pdftagdiff/internal/model"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// annotationAuthor is written to the /T entry of every highlight so the
// annotations can be told apart from ones added by people.
const annotationAuthor = "pdftagdiff"

// annotationFlagPrint is the /F value that makes highlights visible when the
// document is printed (PDF 32000-1, table 165).
const annotationFlagPrint = 4

// disableConfigDir stops pdfcpu from creating its own configuration
// directory under the user's config home.
var disableConfigDir sync.Once

// SaveOptions controls how an annotated document is written.
type SaveOptions struct {
	// Optimize drops unreferenced objects and duplicate resources before
	// writing, the equivalent of a garbage-collecting, compressing save.
	Optimize bool
}

// Editor is a read-modify-write PDF handle backed by pdfcpu.
// It is not safe for concurrent use.
type Editor struct {
	// path is the file the document was opened from.
	path string

	// file is kept open for the lifetime of the Editor because pdfcpu may
	// load stream data lazily.
	file *os.File

	// ctx is the parsed document.
	ctx *pdfmodel.Context

	// now returns the modification time stamped on new annotations.
	now func() time.Time

	// added counts the annotations appended since the document was opened.
	added int
}

// OpenEditor opens the PDF at path for annotation.
// The returned Editor must be closed by the caller.
func OpenEditor(path string) (*Editor, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided document path is intentional
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	disableConfigDir.Do(api.DisableConfigDir)

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		_ = f.Close()
		return nil, &OpenError{Path: path, Err: err}
	}
	if err := api.ValidateContext(ctx); err != nil {
		_ = f.Close()
		return nil, &OpenError{Path: path, Err: err}
	}

	return &Editor{
		path: path,
		file: f,
		ctx:  ctx,
		now:  time.Now,
	}, nil
}

// PageCount returns the number of pages in the document.
func (e *Editor) PageCount() int {
	return e.ctx.PageCount
}

// Added returns the number of annotations appended so far.
func (e *Editor) Added() int {
	return e.added
}

// Highlight appends one highlight annotation per rectangle to the page at
// index. Each annotation is stroked with color and carries contents as its
// note text.
func (e *Editor) Highlight(index int, rects []model.Rect, color model.Color, contents string) error {
	if index < 0 || index >= e.ctx.PageCount {
		return fmt.Errorf("page %d of %d: %w", index+1, e.ctx.PageCount, ErrPageOutOfRange)
	}
	if len(rects) == 0 {
		return nil
	}

	pageDict, pageRef, _, err := e.ctx.PageDict(index+1, false)
	if err != nil {
		return fmt.Errorf("page %d: %w", index+1, err)
	}
	if pageDict == nil || pageRef == nil {
		return fmt.Errorf("page %d: page dictionary not found", index+1)
	}

	annots := types.Array{}
	if obj, ok := pageDict["Annots"]; ok && obj != nil {
		existing, err := e.ctx.DereferenceArray(obj)
		if err != nil {
			return fmt.Errorf("page %d: reading annotations: %w", index+1, err)
		}
		annots = append(annots, existing...)
	}

	for _, r := range rects {
		if r.Empty() {
			continue
		}
		ref, err := e.ctx.IndRefForNewObject(e.highlightDict(r, color, contents, *pageRef))
		if err != nil {
			return fmt.Errorf("page %d: adding annotation: %w", index+1, err)
		}
		annots = append(annots, *ref)
		e.added++
	}

	pageDict["Annots"] = annots
	return nil
}

// highlightDict builds a /Highlight annotation dictionary covering r.
func (e *Editor) highlightDict(r model.Rect, color model.Color, contents string, pageRef types.IndirectRef) types.Dict {
	return types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Highlight"),
		"Rect":    floatArray(r.X0, r.Y0, r.X1, r.Y1),
		// Upper-left, upper-right, lower-left, lower-right, the order
		// viewers expect for text markup annotations.
		"QuadPoints": floatArray(r.X0, r.Y1, r.X1, r.Y1, r.X0, r.Y0, r.X1, r.Y0),
		"C":          floatArray(color.R, color.G, color.B),
		"F":          types.Integer(annotationFlagPrint),
		"P":          pageRef,
		"T":          types.StringLiteral(annotationAuthor),
		"Contents":   textString(contents),
		"NM":         types.StringLiteral(uuid.NewString()),
		"M":          types.StringLiteral(pdfDate(e.now())),
	}
}

// Save writes the document, including any added annotations, to path.
// The destination must not exist and must not be the source document.
func (e *Editor) Save(path string, opts SaveOptions) (err error) {
	if same, serr := sameFile(e.path, path); serr == nil && same {
		return &WriteError{Path: path, Err: ErrSameFile}
	}

	if opts.Optimize {
		if err := api.OptimizeContext(e.ctx); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}

	// O_EXCL guarantees an existing file, including the source, is never
	// truncated.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644) //nolint:gosec // Output path is derived from the run directory
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &WriteError{Path: path, Err: cerr}
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := api.WriteContext(e.ctx, f); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Close releases the underlying file.
func (e *Editor) Close() error {
	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	return err
}

// floatArray converts numbers into a PDF array.
func floatArray(vs ...float64) types.Array {
	arr := make(types.Array, len(vs))
	for i, v := range vs {
		arr[i] = types.Float(v)
	}
	return arr
}

// textString encodes s as a PDF text string. ASCII text is written as an
// escaped literal; anything else as UTF-16BE with a byte order mark in hex
// form.
func textString(s string) types.Object {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || s[i] < 0x20 {
			ascii = false
			break
		}
	}
	if ascii {
		r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
		return types.StringLiteral(r.Replace(s))
	}

	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2, 2+2*len(units))
	buf[0], buf[1] = 0xFE, 0xFF
	for _, u := range units {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return types.HexLiteral(hex.EncodeToString(buf))
}

// pdfDate formats t as a PDF date string (PDF 32000-1, 7.9.4).
func pdfDate(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "Z"
}

// sameFile reports whether a and b name the same file. A missing b is never
// the same file.
func sameFile(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}

	infoA, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	infoB, err := os.Stat(b)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return os.SameFile(infoA, infoB), nil
}
