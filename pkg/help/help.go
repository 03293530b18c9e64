// Package help holds the text behind `iko doc`.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/jeanlauliac/ikolang-sub001/pkg/stdlib"
)

// QUICKREF is printed by `iko doc` without a topic.
const QUICKREF = `iko: a small expression language with value semantics, reactive slots
and inline markup.

  pub let main = mut () {
    slot count = 0
    std.schedule(1000, mut () { ++count })
    std.bindTTY(() { "count: {count}" })
  }

Commands: run, check, fmt, tokens, repl, policy, doc
Topics:   syntax, values, slots, markup, stdlib, diagnostics, examples

Run ` + "`iko doc <topic>`" + ` for details. Topics match by prefix.
`

// TopicList is the order topics are listed in.
var TopicList = []string{"syntax", "values", "slots", "markup", "stdlib", "diagnostics", "examples"}

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax": `SYNTAX

A module is a list of declarations:
  let name = expr          module constant, evaluated on first use
  pub let main = mut () {} the entry point
  use std.List             import a member of std by its last name

Statements inside functions are separated by newlines or ';':
  let x = 1                local, mutable within its own call
  slot n = 0               durable local, writable only in a mut context
  expr

Operators, loosest first: =  ||  &&  == != < > <= >=  + -  * /
prefix ++ --  ! -  &  then .name, calls, [index], Tag { ... }, and ^ (deref).
Functions are (a, b) { ... } or mut (a, b) { ... }. The last statement is
the result. if (cond) { ... } else { ... } is an expression.
`,
	"values": `VALUES

Primitives: strings ("a {expr} b"), numbers, booleans.
Composites: objects { a: 1 }, tagged objects Point { x: 1 }, lists [1, 2],
dicts dict [ "k": 1 ], structs struct { name: value }.

Composites have value semantics: let b = a copies a, lazily. The copy is
made only when one of the holders is mutated.

&place takes a reference to a binding, field, index or key; ^ref reads
through it. Methods called on a value look it up in its struct, so
list.push(1) is std.List.push(&list, 1).
`,
	"slots": `SLOTS AND CONTEXTS

Code runs in one of three contexts:
  mut       main, timers and event handlers: may write slots and call mut
  pure      functions without mut: may only change their own lets
  reactive  render functions: pure, and slots persist per call site

std.bindTTY and std.bindNode take a render function. Every render re-runs
after each top-level mut invocation. A slot declared in a render keeps its
value across re-runs of the same call site; List.map keeps one such state
per list item, following push and splice.
`,
	"markup": `MARKUP

  <ul class="list">{items.map((item) { <li>{item}</li> })}</ul>

Elements are values tagged std.Element with tag, attributes and children.
When rendered into a document:
  - strings, numbers and booleans become text nodes
  - lists render their items in order, reusing nodes of items that moved
  - on* attributes are event handlers run as mut tasks
  - value={&slot} binds an input both ways
Attributes other than value must be allowed by the policy
(.ikopolicy.json or ~/.iko/policy.json).
`,
	"stdlib": `STDLIB

Everything lives under std. Run ` + "`iko doc --index`" + ` for the list of
functions. Functions marked mut can only be called from a mut context.

  std.List     push, splice, map, size, contains, join
  std.Dict     size, has, keys, remove
  std.String   size, split, startsWith, endsWith, contains, replace,
               upper, lower, trim
  std.Object   keys, values, merge
  std.Math     max, min, floor

List, Dict and String functions are also methods: "a,b".split(",").
`,
	"diagnostics": `DIAGNOSTICS

  E_LEX E_PARSE E_INCOMPLETE   the source could not be read
  E_UNBOUND E_CYCLE            names that do not resolve
  E_TYPE E_FIELD E_INDEX E_KEY E_ARGS E_DIV_ZERO
  E_CONTEXT                    a slot write or mut call outside mut
  E_REF                        assigning to something that is not a place
  E_ATTR                       an attribute the policy does not allow
  E_HOST E_ENTRY E_CANCELLED E_IO

Exit codes: 2 for errors found before running, 3 for runtime errors,
4 for anything else.
`,
	"examples": `EXAMPLES

  pub let main = mut () { std.print("hello, world") }

  pub let main = mut () {
    slot items = ["a", "b"]
    std.bindNode(() { <ul>{items.map((i) { <li>{i}</li> })}</ul> })
    std.schedule(500, mut () { items.push("c") })
  }

  let other = dict [ "value": 10 ]
`,
}

// MatchTopic finds a topic by exact name or unique prefix.
func MatchTopic(query string) (string, string, error) {
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if query != "" && strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", "", errors.Errorf("unknown topic %q", query)
	case 1:
		return matches[0], Topics[matches[0]], nil
	}
	return "", "", errors.Errorf("ambiguous topic %q: %s", query, strings.Join(matches, ", "))
}

// StdlibIndex lists the functions of a registry.
func StdlibIndex(r *stdlib.Registry) string {
	names := make([]string, 0, len(r.All()))
	for name := range r.All() {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		marker := ""
		if r.Get(name).Mut {
			marker = " (mut)"
		}
		fmt.Fprintf(&b, "  std.%s%s\n", name, marker)
	}
	fmt.Fprintf(&b, "Total: %d functions\n", len(names))
	return b.String()
}
