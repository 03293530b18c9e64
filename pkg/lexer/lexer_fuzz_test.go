package lexer

import (
	"testing"
)

// FuzzNext feeds random inputs to the lexer to catch panics.
// The lexer should never panic; it returns an error for invalid input.
func FuzzNext(f *testing.F) {
	seeds := []string{
		`let slot mut pub use if else true false struct dict`,
		`42 0 9007199254740992`,
		`"hello" "with\nescape" "quote\""`,
		`"interp {x}"`,
		`++ -- == != <= >= && || /> + - * / = < > ! & ^`,
		`{ } [ ] ( ) : , . ;`,
		`// comment only`,
		`<div class="a">text {x}</div>`,
		``,
		"\t\n\r",
		`"unterminated`,
		`@#$`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		for _, pl := range []Placement{Default, PrimitiveExp, HTMLTag} {
			l := New(input, "fuzz.iko")
			st := Start()
			for i := 0; i <= len(input)+1; i++ {
				tok, next, err := l.Next(st, pl)
				if err != nil || tok.Type == TokEnd {
					break
				}
				if next.Offset <= st.Offset {
					t.Fatalf("lexer did not advance on %q at %d", input, st.Offset)
				}
				st = next
			}
		}
	})
}
