/*
Package shotvec turns Android screenshots into compact vector documents.

Screenshots are captured over adb, cropped, traced to SVG by an external
vectorizer, reduced by folding duplicate path geometry, and finally
assembled into a page-per-screenshot PDF.

The package provides a command line interface; to check the supported
commands type:

	$ shotvec --help

The pipeline can also be driven programmatically:

	p := &shotvec.Processor{
		CropTop:    150,
		CropBottom: 150,
	}

	if _, err := p.ProcessFile(ctx, "page.png", "page.svg"); err != nil {
		fmt.Printf("Error tracing image: %s", err.Error())
	}
*/
package shotvec
