package mysensors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakipr/mysensors/message"
)

func TestWaitElapsesOnMockClock(t *testing.T) {
	node, _, pw, clock := newTestNode(nil)

	start := clock.Now()
	node.Wait(50 * time.Millisecond)

	assert.GreaterOrEqual(t, clock.Now().Sub(start), 50*time.Millisecond)
	assert.Greater(t, pw.kicks, 0, "wait must service the watchdog")
}

func TestWaitCmdMatchesQualifyingMessage(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	msg := inboundInternal(message.GatewayAddress, message.InternalDebug)
	tr.queueInbound(msg)

	assert.True(t, node.WaitCmd(time.Second, message.CmdInternal))
}

func TestWaitCmdTypeFiltersSubType(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	tr.queueInbound(inboundInternal(message.GatewayAddress, message.InternalDebug))

	// Wrong sub-type: the wait must run to its deadline and report false.
	assert.False(t, node.WaitCmdType(20*time.Millisecond, message.CmdInternal, uint8(message.InternalTime)))

	tr.queueInbound(inboundInternal(message.GatewayAddress, message.InternalTime))
	assert.True(t, node.WaitCmdType(20*time.Millisecond, message.CmdInternal, uint8(message.InternalTime)))
}

func TestWaitTimesOutWithoutMatch(t *testing.T) {
	node, _, _, clock := newTestNode(nil)

	start := clock.Now()
	got := node.WaitCmd(30*time.Millisecond, message.CmdSet)

	assert.False(t, got)
	assert.GreaterOrEqual(t, clock.Now().Sub(start), 30*time.Millisecond)
}

func TestRecursiveWaitIsFatal(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	var fatal string
	node.fatalHook = func(reason string) { fatal = reason }

	var nested bool
	node.OnReceive(func(msg *message.Message) {
		// Misuse: waiting from inside the message handler of a running wait.
		nested = node.WaitCmd(10*time.Millisecond, message.CmdSet)
	})

	var msg message.Message
	msg.Clear()
	message.Build(&msg, 9, 42, 1, message.CmdSet, uint8(message.VarStatus), false)
	tr.queueInbound(&msg)

	node.Wait(10 * time.Millisecond)

	require.Equal(t, "recursive wait", fatal)
	assert.False(t, nested)
}

func TestRecursiveWaitDetectedBeforeDrainingFurtherMessages(t *testing.T) {
	node, tr, _, _ := newTestNode(nil)

	var events []string
	node.fatalHook = func(string) { events = append(events, "fatal") }
	node.OnReceive(func(msg *message.Message) {
		events = append(events, "handler")
		node.Wait(time.Millisecond)
	})

	var first, second message.Message
	first.Clear()
	message.Build(&first, 9, 42, 1, message.CmdSet, uint8(message.VarStatus), false)
	second = first

	tr.queueInbound(&first)
	tr.queueInbound(&second)

	node.Wait(5 * time.Millisecond)

	// The nested wait must be rejected while the first handler call is
	// still on the stack, before the second envelope is drained.
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, []string{"handler", "fatal"}, events[:2])
}
