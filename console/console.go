package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Serve reads commands line by line from r until EOF and answers on w.
// The only command is "trigger <name>"; blank lines are ignored.
func Serve(r io.Reader, w io.Writer, flags *Flags) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		var reply string
		switch {
		case fields[0] == "trigger" && len(fields) == 2:
			v, err := flags.Trigger(fields[1])
			if err != nil {
				reply = err.Error()
			} else {
				reply = fmt.Sprintf("%s = %v", fields[1], v)
			}
		default:
			reply = fmt.Sprintf("usage: trigger <%s>", strings.Join(flags.Names(), "|"))
		}
		if _, err := fmt.Fprintln(w, reply); err != nil {
			return errors.Wrap(err, "console reply")
		}
	}
	return errors.Wrap(sc.Err(), "console read")
}
