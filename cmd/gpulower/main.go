package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/substratelabs/gpulower/conversion"
	"github.com/substratelabs/gpulower/interp"
	"github.com/substratelabs/gpulower/ir"
)

func main() {
	var (
		demoName    = flag.String("demo", "", "Demo program to lower")
		list        = flag.Bool("list", false, "List demo programs and exit")
		execute     = flag.Bool("run", false, "Execute the lowered program on the host")
		verbose     = flag.Bool("v", false, "Log pattern applications")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		conversion.SetLogger(log)
	}

	if *list {
		fmt.Println("Demo programs:")
		for _, d := range demos() {
			fmt.Printf("  %-8s %s\n", d.name, d.describe)
		}
		return
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *demoName == "" {
		fmt.Fprintln(os.Stderr, "Usage: gpulower -demo <name> [-run] [-v]")
		fmt.Fprintln(os.Stderr, "       gpulower -list")
		fmt.Fprintln(os.Stderr, "       gpulower -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*demoName, *execute); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(demoName string, execute bool) error {
	d, ok := findDemo(demoName)
	if !ok {
		return fmt.Errorf("unknown demo %q, try -list", demoName)
	}

	f := d.build()
	fmt.Printf("Demo: %s\n", d.name)
	fmt.Printf("Ops before lowering: %d\n\n", countOps(f))
	ir.Print(os.Stdout, f)

	if err := conversion.Apply(f, conversion.DefaultConfig()); err != nil {
		return fmt.Errorf("lower %s: %w", d.name, err)
	}

	fmt.Printf("\nOps after lowering: %d\n\n", countOps(f))
	ir.Print(os.Stdout, f)

	if !execute {
		return nil
	}

	fmt.Printf("\nExecuting %s...\n", d.name)
	results, err := interp.New(interp.Config{}).Exec(f, d.args()...)
	if err != nil {
		return fmt.Errorf("execute %s: %w", d.name, err)
	}
	for i, r := range results {
		fmt.Printf("Result %d: %v\n", i, formatResult(r))
	}
	return nil
}

func countOps(f *ir.Func) int {
	return f.CountOps(func(*ir.Op) bool { return true })
}

func formatResult(r any) string {
	if b, ok := r.(*interp.Buffer); ok {
		bytes, err := b.Bytes()
		if err != nil {
			return fmt.Sprintf("buffer (%v)", err)
		}
		return fmt.Sprintf("buffer %v", bytes)
	}
	return fmt.Sprintf("%v", r)
}
