// Package parser extracts structured fields from free text using a library
// of templates.
//
// A Parser loads templates once from a TemplateSource, compiles them, and
// matches each input against them in the order chosen by the selection
// mode. The first template that matches supplies the fields; their values
// are sanitized before being returned in a Result.
//
// Each Parse call is independent. Its Result carries the extracted fields,
// the applied template ID and the events emitted during the call; the same
// events are also handed to the configured Recorder.
//
// # Usage
//
//	src, err := store.NewDir("templates")
//	if err != nil {
//	    return err
//	}
//	p, err := parser.New(ctx, src, parser.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	res, err := p.Parse(ctx, text, selector.ModeBestFit)
//	if err != nil {
//	    return err
//	}
//	id, err := res.GetStrict("id")
//
// The template set is fixed until Reload is called.
package parser
