package llm

import (
	"bufio"
	"io"
	"strings"
)

// readSSE calls onData with the payload of every "data:" line of a server
// sent event stream until the stream ends or onData returns stop.
func readSSE(r io.Reader, onData func(data string) (stop bool, err error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		stop, err := onData(strings.TrimSpace(data))
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return scanner.Err()
}
