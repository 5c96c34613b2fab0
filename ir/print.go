package ir

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Print writes a compact textual rendering of the function to w.
//
// The format is for logs, error messages, and the interactive inspector
// only. It is one op per line with %N value numbering and is not meant
// to be parsed back.
func Print(w io.Writer, f *Func) {
	p := &printer{ids: make(map[*Value]int)}
	fmt.Fprintf(w, "func %s%s {\n", f.Name, f.Type())
	p.printRegion(w, f.Body(), 1)
	fmt.Fprintln(w, "}")
}

// Sprint renders the function to a string.
func Sprint(f *Func) string {
	var b strings.Builder
	Print(&b, f)
	return b.String()
}

type printer struct {
	ids  map[*Value]int
	next int
}

func (p *printer) id(v *Value) string {
	if v == nil {
		return "%?"
	}
	n, ok := p.ids[v]
	if !ok {
		n = p.next
		p.next++
		p.ids[v] = n
	}
	return fmt.Sprintf("%%%d", n)
}

func (p *printer) printRegion(w io.Writer, r *Region, depth int) {
	indent := strings.Repeat("  ", depth)
	for bi, b := range r.Blocks() {
		if bi > 0 || len(b.Arguments()) > 0 {
			var args []string
			for _, a := range b.Arguments() {
				args = append(args, p.id(a)+": "+a.Type().String())
			}
			fmt.Fprintf(w, "%s^bb%d(%s):\n", indent, bi, strings.Join(args, ", "))
		}
		for _, op := range b.Ops() {
			p.printOp(w, op, depth)
		}
	}
}

func (p *printer) printOp(w io.Writer, op *Op, depth int) {
	indent := strings.Repeat("  ", depth)
	var b strings.Builder
	b.WriteString(indent)

	if n := op.NumResults(); n > 0 {
		var rs []string
		for _, r := range op.Results() {
			rs = append(rs, p.id(r))
		}
		b.WriteString(strings.Join(rs, ", "))
		b.WriteString(" = ")
	}
	b.WriteString(op.Kind)

	if n := op.NumOperands(); n > 0 {
		b.WriteByte('(')
		var os []string
		for _, o := range op.Operands() {
			os = append(os, p.id(o))
		}
		b.WriteString(strings.Join(os, ", "))
		b.WriteByte(')')
	}

	if attrs := op.Attrs(); len(attrs) > 0 {
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var kv []string
		for _, k := range keys {
			kv = append(kv, fmt.Sprintf("%s = %v", k, attrs[k]))
		}
		b.WriteString(" {")
		b.WriteString(strings.Join(kv, ", "))
		b.WriteByte('}')
	}

	if n := op.NumResults(); n > 0 {
		var ts []string
		for _, r := range op.Results() {
			ts = append(ts, r.Type().String())
		}
		b.WriteString(" : ")
		b.WriteString(strings.Join(ts, ", "))
	}

	fmt.Fprintln(w, b.String())

	for _, r := range op.Regions() {
		fmt.Fprintf(w, "%s{\n", indent)
		p.printRegion(w, r, depth+1)
		fmt.Fprintf(w, "%s}\n", indent)
	}
}
