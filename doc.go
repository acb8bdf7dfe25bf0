// Package dealdoc generates facility-agreement documents as .docx files.
//
// # Quick Start
//
// Create a generator and hand each deal to a Deliverer:
//
//	gen, err := dealdoc.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = gen.GenerateFacilityAgreement(ctx, dealdoc.DealInfo{
//	    BorrowerName:   "Acme Capital Partners",
//	    FacilityAmount: "USD 25,000,000",
//	    DealType:       "Term Loan",
//	    Jurisdiction:   "England and Wales",
//	}, dealdoc.FileDelivery{Dir: "agreements"})
//
// The file above lands at agreements/Acme_Capital_Partners_Facility_Agreement_v1.docx.
// Use Build instead to get the Document in memory without delivering it.
//
// # Generation Stages
//
//  1. Compose: render the Markdown agreement skeleton with the deal fields
//     and today's date ("January 5, 2025").
//  2. Archive: build the four-part WordprocessingML package in memory.
//     All text is XML-escaped.
//  3. Serialize: write the package as a ZIP archive into a buffer.
//  4. Deliver: pass the finished document to the Deliverer, once.
//
// Nothing reaches the Deliverer unless stages 1-3 succeed. Failures are
// returned as *GenerationError, which names the stage and wraps the cause;
// errors.Is(err, ErrGenerationFailed) holds for all of them.
//
// # Configuration
//
//	gen, err := dealdoc.NewGenerator(
//	    dealdoc.WithClock(func() time.Time { return fixed }),
//	    dealdoc.WithLogger(logger),
//	    dealdoc.WithAssetPath("/path/to/assets"),
//	    dealdoc.WithTemplate("facility-agreement"),
//	)
//
// Custom skeletons live at {assetPath}/templates/{name}.md and may use
// {{.BorrowerName}}, {{.FacilityAmount}}, {{.DealType}}, {{.Jurisdiction}}
// and {{.Date}}.
//
// # Concurrency
//
// A Generator is immutable after NewGenerator returns and may be shared by
// any number of goroutines. Each call builds its own archive. Overlapping
// calls for the same deal are not deduplicated.
package dealdoc
