// Package extraction applies compiled templates to text and pulls out the
// named captures.
//
// # Match policy
//
// A template matches when its pattern is found anywhere in the text and at
// least one named group took part in the match. An empty capture still
// counts as long as its group participated. Unnamed groups, which appear when
// a template author writes a subpattern such as (open|closed), are dropped.
//
// A pattern that matches but captures no named group is reported as no
// match, so a template without placeholders never wins a selection.
//
// # Usage
//
//	engine := extraction.NewEngine()
//	captures, ok, err := engine.Extract(text, tpl.Compiled)
//	if err != nil {
//	    return err // match timeout
//	}
//	if ok {
//	    for _, c := range captures {
//	        fmt.Printf("%s=%q\n", c.Name, c.Value)
//	    }
//	}
//
// Values are returned raw; sanitizing them is the caller's job.
package extraction
