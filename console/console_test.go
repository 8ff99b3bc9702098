package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestFlagsTrigger(t *testing.T) {
	f := DefaultFlags()
	var seen []bool
	f.OnChange(Freeze, func(v bool) { seen = append(seen, v) })

	for _, want := range []bool{true, false, true} {
		v, err := f.Trigger(Freeze)
		if err != nil {
			t.Fatal(err)
		}
		if v != want || f.Get(Freeze) != want {
			t.Fatalf("freeze %v, want %v", v, want)
		}
	}
	if len(seen) != 3 || !seen[0] || seen[1] || !seen[2] {
		t.Fatalf("hook saw %v", seen)
	}
	if f.Get(Wireframe) {
		t.Fatal("wireframe flipped by freeze")
	}
	if _, err := f.Trigger("nope"); errors.Cause(err) != ErrUnknownFlag {
		t.Fatalf("unknown flag: %v", err)
	}
	if got := strings.Join(f.Names(), ","); got != "freeze,stats,wireframe" {
		t.Fatalf("names %s", got)
	}
}

func TestServe(t *testing.T) {
	f := DefaultFlags()
	in := strings.NewReader("trigger stats\n\ntrigger bogus\nhelp\ntrigger stats\n")
	var out bytes.Buffer
	if err := Serve(in, &out, f); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("replies %q", lines)
	}
	if lines[0] != "stats = true" || lines[3] != "stats = false" {
		t.Fatalf("replies %q", lines)
	}
	if !strings.Contains(lines[1], "unknown debug flag") {
		t.Fatalf("bogus reply %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "usage: trigger <freeze|stats|wireframe>") {
		t.Fatalf("usage reply %q", lines[2])
	}
}

func TestListen(t *testing.T) {
	f := DefaultFlags()
	s, err := Listen("127.0.0.1:0", f)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	c, err := Dial(s.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	v, err := c.Trigger(Wireframe)
	if err != nil {
		t.Fatal(err)
	}
	if !v || !f.Get(Wireframe) {
		t.Fatal("wireframe not set over rpc")
	}
	if _, err := c.Trigger("bogus"); err == nil {
		t.Fatal("bogus flag accepted")
	}
	all, err := c.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || !all[Wireframe] || all[Freeze] {
		t.Fatalf("list %v", all)
	}
}
