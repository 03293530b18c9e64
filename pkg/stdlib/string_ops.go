package stdlib

import (
	"strings"
	"unicode/utf8"

	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
)

func asStr(c *evaluator.Call, v evaluator.Value) (string, error) {
	s, ok := v.(evaluator.Str)
	if !ok {
		return "", c.Errorf(diagnostics.EType, "`%s` expects a string, got %s", c.Name, evaluator.TypeName(v))
	}
	return string(s), nil
}

// strArgs checks that there are n arguments, all strings.
func strArgs(c *evaluator.Call, args []evaluator.Value, n int) ([]string, error) {
	if err := c.Arity(args, n, n); err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i, a := range args {
		s, err := asStr(c, a)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// size(string) → number of characters
func stdlibStrSize(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	s, err := strArgs(c, args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.Num(utf8.RuneCountInString(s[0])), nil
}

// split(string, sep) → list of strings
func stdlibStrSplit(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	s, err := strArgs(c, args, 2)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s[0], s[1])
	items := make([]evaluator.Value, len(parts))
	for i, p := range parts {
		items[i] = evaluator.Str(p)
	}
	return evaluator.NewList(items...), nil
}

// startsWith(string, prefix) → bool
func stdlibStrStartsWith(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	s, err := strArgs(c, args, 2)
	if err != nil {
		return nil, err
	}
	return evaluator.Bool(strings.HasPrefix(s[0], s[1])), nil
}

// endsWith(string, suffix) → bool
func stdlibStrEndsWith(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	s, err := strArgs(c, args, 2)
	if err != nil {
		return nil, err
	}
	return evaluator.Bool(strings.HasSuffix(s[0], s[1])), nil
}

// contains(string, substring) → bool
func stdlibStrContains(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	s, err := strArgs(c, args, 2)
	if err != nil {
		return nil, err
	}
	return evaluator.Bool(strings.Contains(s[0], s[1])), nil
}

// replace(string, from, to) → string with every from replaced
func stdlibStrReplace(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	s, err := strArgs(c, args, 3)
	if err != nil {
		return nil, err
	}
	return evaluator.Str(strings.ReplaceAll(s[0], s[1], s[2])), nil
}

func stdlibStrUpper(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	s, err := strArgs(c, args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.Str(strings.ToUpper(s[0])), nil
}

func stdlibStrLower(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	s, err := strArgs(c, args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.Str(strings.ToLower(s[0])), nil
}

func stdlibStrTrim(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	s, err := strArgs(c, args, 1)
	if err != nil {
		return nil, err
	}
	return evaluator.Str(strings.TrimSpace(s[0])), nil
}

// join(list, sep) → the items shown as print shows them, separated by sep
func stdlibListJoin(c *evaluator.Call, args []evaluator.Value) (evaluator.Value, error) {
	if err := c.Arity(args, 2, 2); err != nil {
		return nil, err
	}
	l, err := asList(c, args[0])
	if err != nil {
		return nil, err
	}
	sep, err := asStr(c, args[1])
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for i, item := range l.Items {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(evaluator.Display(item))
	}
	return evaluator.Str(sb.String()), nil
}
