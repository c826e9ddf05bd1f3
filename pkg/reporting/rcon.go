package reporting

import (
	"context"
	"os/exec"
	"strconv"
	"time"
)

// ExecRCON is the default RCONExecutor, invoking an external
// command-line tool (spec.md §4.7: "RCON is executed by invoking an
// external command-line tool — this is explicitly an external
// collaborator").
type ExecRCON struct {
	ToolPath string
	Timeout  time.Duration
}

// Execute runs ToolPath with the peer id, command, slot, and mfid as
// positional arguments.
func (e *ExecRCON) Execute(peerID, command string, args []string, slot int, mfid string) error {
	timeout := e.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fullArgs := append([]string{peerID, command}, args...)
	fullArgs = append(fullArgs, strconv.Itoa(slot), mfid)
	cmd := exec.CommandContext(ctx, e.ToolPath, fullArgs...)
	return cmd.Run()
}
