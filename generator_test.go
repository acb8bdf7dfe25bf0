package dealdoc

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-dealdoc/internal/docx"
)

var testDeal = DealInfo{
	BorrowerName:   "Acme Capital Partners",
	FacilityAmount: "USD 25,000,000",
	DealType:       "Term Loan",
	Jurisdiction:   "England and Wales",
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// withSerializer replaces the serialization stage.
func withSerializer(fn func(*docx.Package) ([]byte, error)) Option {
	return func(g *Generator) {
		g.serialize = fn
	}
}

// newObservedGenerator returns a generator whose logs are captured.
func newObservedGenerator(t *testing.T, opts ...Option) (*Generator, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	opts = append([]Option{
		WithClock(fixedClock(time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC))),
		WithLogger(zap.New(core)),
	}, opts...)

	g, err := NewGenerator(opts...)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	return g, logs
}

// documentText unzips data and returns the text of every body paragraph.
func documentText(t *testing.T, data []byte) (names []string, paragraphs []string) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}

	var body []byte
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name != docx.DocumentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		body, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	var current strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("document.xml is not well-formed: %v", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				current.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "p":
				paragraphs = append(paragraphs, current.String())
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	return names, paragraphs
}

// recorder counts deliveries and keeps the last document.
type recorder struct {
	mu    sync.Mutex
	calls int
	last  *Document
	err   error
}

func (r *recorder) Deliver(_ context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = doc
	return r.err
}

func TestNewGenerator(t *testing.T) {
	t.Parallel()

	customDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(customDir, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTemplate := func(name, content string) {
		path := filepath.Join(customDir, "templates", name+".md")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeTemplate("short", "Loan to {{.BorrowerName}}\n")
	writeTemplate("broken", "Loan to {{.BorrowerName\n")

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{name: "defaults"},
		{name: "custom template", opts: []Option{WithAssetPath(customDir), WithTemplate("short")}},
		{name: "custom path falls back to embedded", opts: []Option{WithAssetPath(customDir)}},
		{name: "unknown template", opts: []Option{WithTemplate("missing")}, wantErr: ErrTemplateNotFound},
		{name: "invalid template name", opts: []Option{WithTemplate("../etc")}, wantErr: ErrInvalidAssetName},
		{name: "malformed template", opts: []Option{WithAssetPath(customDir), WithTemplate("broken")}, wantErr: ErrInvalidTemplate},
		{name: "missing asset path", opts: []Option{WithAssetPath(filepath.Join(customDir, "nope"))}, wantErr: ErrInvalidAssetPath},
		{name: "bad date format", opts: []Option{WithDateFormat("YYYY-MM-DD-DD-DD-DD-DD-DD-DD-DD-DD-DD-DD-DD-DD-DD-DD")}, wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g, err := NewGenerator(tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewGenerator() error = %v, want %v", err, tt.wantErr)
				}
				if errors.Is(err, ErrGenerationFailed) {
					t.Error("configuration error must not be a generation failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGenerator() error = %v", err)
			}
			if g.skeleton == nil {
				t.Error("skeleton not loaded")
			}
		})
	}
}

func TestWithClock_NilPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithClock(nil) did not panic")
		}
	}()
	WithClock(nil)
}

func TestGenerateFacilityAgreement_Success(t *testing.T) {
	t.Parallel()

	g, logs := newObservedGenerator(t)
	rec := &recorder{}

	if err := g.GenerateFacilityAgreement(context.Background(), testDeal, rec); err != nil {
		t.Fatalf("GenerateFacilityAgreement() error = %v", err)
	}

	if rec.calls != 1 {
		t.Fatalf("deliveries = %d, want 1", rec.calls)
	}
	doc := rec.last
	if doc.Filename != "Acme_Capital_Partners_Facility_Agreement_v1.docx" {
		t.Errorf("Filename = %q", doc.Filename)
	}
	if doc.MIMEType != docx.MIMEType {
		t.Errorf("MIMEType = %q", doc.MIMEType)
	}
	if doc.GenerationID == "" {
		t.Error("GenerationID is empty")
	}

	names, paragraphs := documentText(t, doc.Data)
	if strings.Join(names, ",") != strings.Join(docx.RequiredParts, ",") {
		t.Errorf("archive entries = %v, want %v", names, docx.RequiredParts)
	}
	if strings.Join(doc.Entries, ",") != strings.Join(names, ",") {
		t.Errorf("Entries = %v, archive holds %v", doc.Entries, names)
	}

	text := strings.Join(paragraphs, "\n")
	for _, want := range []string{
		"FACILITY AGREEMENT",
		"Dated January 5, 2025",
		"Term Loan Facility",
		"USD 25,000,000",
		"Acme Capital Partners",
		"Governed by the laws of England and Wales",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("document text missing %q:\n%s", want, text)
		}
	}

	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 0 {
		t.Errorf("error logs = %d, want 0", n)
	}
	if logs.FilterMessage("facility agreement delivered").Len() != 1 {
		t.Error("missing debug log for delivery")
	}
}

func TestGenerateFacilityAgreement_BlankParagraphsBetweenBlocks(t *testing.T) {
	t.Parallel()

	g, _ := newObservedGenerator(t)
	doc, err := g.Build(context.Background(), testDeal)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	_, paragraphs := documentText(t, doc.Data)
	want := 2*g.skeleton.Len() - 1
	if len(paragraphs) != want {
		t.Fatalf("paragraphs = %d, want %d", len(paragraphs), want)
	}
	for i := 1; i < len(paragraphs); i += 2 {
		if paragraphs[i] != "" {
			t.Errorf("paragraph %d = %q, want spacer", i, paragraphs[i])
		}
	}
}

func TestGenerateFacilityAgreement_EscapesMarkup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		borrower string
	}{
		{name: "angle brackets", borrower: "<Acme> Holdings"},
		{name: "ampersand", borrower: "Smith & Jones LLP"},
		{name: "quotes", borrower: `The "Best" Co's`},
		{name: "markdown characters", borrower: "*Acme* _Corp_ #1"},
		{name: "empty", borrower: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g, _ := newObservedGenerator(t)
			deal := testDeal
			deal.BorrowerName = tt.borrower

			doc, err := g.Build(context.Background(), deal)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			_, paragraphs := documentText(t, doc.Data)
			found := false
			for _, p := range paragraphs {
				if p == tt.borrower {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("no paragraph equals borrower %q; got %q", tt.borrower, paragraphs)
			}
			if doc.Filename != OutputFilename(tt.borrower) {
				t.Errorf("Filename = %q, want %q", doc.Filename, OutputFilename(tt.borrower))
			}
		})
	}
}

func TestGenerateFacilityAgreement_DateFollowsClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		now  time.Time
		opts []Option
		want string
	}{
		{name: "single digit day", now: time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), want: "Dated January 5, 2025"},
		{name: "two digit day", now: time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC), want: "Dated December 31, 2024"},
		{name: "leap day", now: time.Date(2028, time.February, 29, 12, 0, 0, 0, time.UTC), want: "Dated February 29, 2028"},
		{name: "iso preset", now: time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC), opts: []Option{WithDateFormat("iso")}, want: "Dated 2025-03-07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g, _ := newObservedGenerator(t, append(tt.opts, WithClock(fixedClock(tt.now)))...)
			doc, err := g.Build(context.Background(), testDeal)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			_, paragraphs := documentText(t, doc.Data)
			if !strings.Contains(strings.Join(paragraphs, "\n"), tt.want) {
				t.Errorf("document missing %q: %q", tt.want, paragraphs)
			}
		})
	}
}

func TestGenerateFacilityAgreement_Reproducible(t *testing.T) {
	t.Parallel()

	g, _ := newObservedGenerator(t)
	first, err := g.Build(context.Background(), testDeal)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := g.Build(context.Background(), testDeal)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("same deal and clock produced different archives")
	}
	if first.GenerationID == second.GenerationID {
		t.Error("generation IDs repeat across calls")
	}
}

func TestGenerateFacilityAgreement_Failures(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		opts      []Option
		ctx       func() context.Context
		deliverer func(r *recorder) Deliverer
		wantStage Stage
		wantCause error
		wantCalls int
		wantLevel zapcore.Level
	}{
		{
			name:      "serialization error",
			opts:      []Option{withSerializer(func(*docx.Package) ([]byte, error) { return nil, errBoom })},
			wantStage: StageSerialize,
			wantCause: errBoom,
			wantLevel: zapcore.ErrorLevel,
		},
		{
			name:      "serialization panic",
			opts:      []Option{withSerializer(func(*docx.Package) ([]byte, error) { panic("zip exploded") })},
			wantStage: StageSerialize,
			wantLevel: zapcore.ErrorLevel,
		},
		{
			name:      "clock panic during composition",
			opts:      []Option{WithClock(func() time.Time { panic("no clock") })},
			wantStage: StageCompose,
			wantLevel: zapcore.ErrorLevel,
		},
		{
			name: "canceled context",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantStage: StageCompose,
			wantCause: context.Canceled,
			wantLevel: zapcore.WarnLevel,
		},
		{
			name:      "nil deliverer",
			deliverer: func(*recorder) Deliverer { return nil },
			wantStage: StageDeliver,
			wantCause: ErrNilDeliverer,
			wantLevel: zapcore.ErrorLevel,
		},
		{
			name: "deliverer error",
			deliverer: func(r *recorder) Deliverer {
				r.err = errBoom
				return r
			},
			wantStage: StageDeliver,
			wantCause: errBoom,
			wantCalls: 1,
			wantLevel: zapcore.ErrorLevel,
		},
		{
			name: "deliverer panic",
			deliverer: func(*recorder) Deliverer {
				return DelivererFunc(func(context.Context, *Document) error { panic("disk on fire") })
			},
			wantStage: StageDeliver,
			wantLevel: zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g, logs := newObservedGenerator(t, tt.opts...)
			rec := &recorder{}
			var d Deliverer = rec
			if tt.deliverer != nil {
				d = tt.deliverer(rec)
			}
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}

			err := g.GenerateFacilityAgreement(ctx, testDeal, d)

			if !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("error = %v, want ErrGenerationFailed", err)
			}
			stage, ok := StageOf(err)
			if !ok || stage != tt.wantStage {
				t.Errorf("StageOf() = %q, %v; want %q", stage, ok, tt.wantStage)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("error = %v, want cause %v", err, tt.wantCause)
			}
			if rec.calls != tt.wantCalls {
				t.Errorf("deliveries = %d, want %d", rec.calls, tt.wantCalls)
			}

			entries := logs.FilterLevelExact(tt.wantLevel).All()
			if len(entries) != 1 {
				t.Fatalf("%s logs = %d, want exactly 1", tt.wantLevel, len(entries))
			}
			fields := entries[0].ContextMap()
			if fields["stage"] != string(tt.wantStage) {
				t.Errorf("logged stage = %v, want %q", fields["stage"], tt.wantStage)
			}
			if fields["borrower"] != testDeal.BorrowerName {
				t.Errorf("logged borrower = %v", fields["borrower"])
			}
			if fields["generation_id"] == "" || fields["generation_id"] == nil {
				t.Error("logged generation_id is empty")
			}
		})
	}
}

func TestBuild_FailureReturnsNoDocument(t *testing.T) {
	t.Parallel()

	g, logs := newObservedGenerator(t,
		withSerializer(func(*docx.Package) ([]byte, error) { return nil, errors.New("boom") }),
	)

	doc, err := g.Build(context.Background(), testDeal)
	if doc != nil {
		t.Error("Build() returned a document on failure")
	}
	if stage, _ := StageOf(err); stage != StageSerialize {
		t.Errorf("stage = %q, want %q", stage, StageSerialize)
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Error("want exactly one error log")
	}
}

func TestGenerateFacilityAgreement_Concurrent(t *testing.T) {
	t.Parallel()

	g, logs := newObservedGenerator(t)

	const n = 32
	var delivered atomic.Int32
	d := DelivererFunc(func(_ context.Context, doc *Document) error {
		if len(doc.Entries) != len(docx.RequiredParts) {
			t.Errorf("entries = %v", doc.Entries)
		}
		delivered.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			deal := testDeal
			if i%2 == 0 {
				deal.BorrowerName = "Globex Corporation"
			}
			if err := g.GenerateFacilityAgreement(context.Background(), deal, d); err != nil {
				t.Errorf("GenerateFacilityAgreement() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := delivered.Load(); got != n {
		t.Errorf("deliveries = %d, want %d", got, n)
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 0 {
		t.Error("unexpected error logs")
	}
}

func TestGenerator_Templates(t *testing.T) {
	t.Parallel()

	g, _ := newObservedGenerator(t)
	names, err := g.Templates()
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}
	found := false
	for _, n := range names {
		if n == "facility-agreement" {
			found = true
		}
	}
	if !found {
		t.Errorf("Templates() = %v, missing facility-agreement", names)
	}
}
