package main

import (
	"context"
	"fmt"
	"io"

	"github.com/maxsklar/newmap.ai.nyu/internal/codec"
	"github.com/maxsklar/newmap.ai.nyu/internal/pipeline"
	"github.com/maxsklar/newmap.ai.nyu/internal/session"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// runner applies a stream of YAML commands to a session.
type runner struct {
	sess   *session.Session
	out    io.Writer
	errOut io.Writer
	asYAML bool
	color  bool
}

// run applies every document in r and returns how many commands failed.
// A document that is not valid YAML ends the stream.
func (r *runner) run(ctx context.Context, in io.Reader) int {
	docs := codec.NewYAMLReader(in)
	p := pipeline.ForSession(r.sess)
	failed := 0
	for n := 1; ; n++ {
		node, err := docs.Next()
		if err == io.EOF {
			return failed
		}
		if err != nil {
			r.report(n, err)
			return failed + 1
		}
		if node == nil {
			continue
		}

		pc := p.Run(&pipeline.PipelineContext{Context: ctx, Node: node})
		if pc.Err != nil {
			r.report(n, pc.Err)
			failed++
			continue
		}
		if err := r.print(pc.Command, pc.Result); err != nil {
			r.report(n, err)
			failed++
		}
	}
}

func (r *runner) print(cmd session.Command, result typesystem.Object) error {
	if r.asYAML {
		data, err := codec.MarshalYAML(result)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(r.out, "---\n%s", data); err != nil {
			return err
		}
		return nil
	}
	if let, ok := cmd.(*session.Let); ok {
		_, err := fmt.Fprintf(r.out, "%s = %s\n", let.Name, result.Inspect())
		return err
	}
	_, err := fmt.Fprintln(r.out, result.Inspect())
	return err
}

func (r *runner) report(n int, err error) {
	if r.color {
		fmt.Fprintf(r.errOut, "\033[31mcommand %d: %s\033[0m\n", n, err)
		return
	}
	fmt.Fprintf(r.errOut, "command %d: %s\n", n, err)
}

// printEnv lists the session's bindings with their types. With names, only
// those bindings are listed, and the first unbound name is an error.
func printEnv(w io.Writer, sess *session.Session, names []string) error {
	bindings := sess.Bindings()
	if len(names) > 0 {
		bindings = bindings[:0]
		for _, name := range names {
			b, err := sess.Lookup(name)
			if err != nil {
				return err
			}
			bindings = append(bindings, b)
		}
	}
	for _, b := range bindings {
		if _, err := fmt.Fprintf(w, "%s: %s = %s\n", b.Name, b.TypeInfo, b.Object.Inspect()); err != nil {
			return err
		}
	}
	return nil
}
