package callbacks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/effective-security/gogentic-mermaid/chatmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct{ name string }

func (t *fakeTool) Name() string                                           { return t.name }
func (t *fakeTool) Description() string                                    { return "desc" }
func (t *fakeTool) Parameters() any                                        { return nil }
func (t *fakeTool) Call(ctx context.Context, input string) (string, error) { return "", nil }

func newTestChatContext() (context.Context, chatmodel.ChatContext) {
	chatCtx := chatmodel.NewChatContext("chatid", "")
	ctx := chatmodel.WithChatContext(context.Background(), chatCtx)
	return ctx, chatCtx
}

func TestScratchpad_StartRun_EndRun(t *testing.T) {
	t.Parallel()
	sp := NewScratchpad(ModeVerbose)
	ctx, cctx := newTestChatContext()
	sp.StartRun(ctx)

	r := sp.runs[cctx.GetChatID()]
	require.NotNil(t, r)
	r.stats.ToolsCalls = 3
	r.stats.ToolsCallsFailed = 2
	r.stats.ToolNotFound = 1

	stats, buf := sp.EndRun(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, "chatid", stats.ChatID)
	assert.Contains(t, string(buf), "Run Started")
	assert.Contains(t, string(buf), "Run Ended")
	assert.Contains(t, string(buf), "Tool calls: 3, Failed: 2, Not Found: 1")
	_, ok := sp.runs[cctx.GetChatID()]
	assert.False(t, ok)

	// run already deleted
	s2, _ := sp.EndRun(ctx)
	assert.Nil(t, s2)
}

func TestScratchpad_getRun_nil(t *testing.T) {
	t.Parallel()
	sp := NewScratchpad(ModeDefault)
	assert.Nil(t, sp.getRun(context.Background()))
	// no chat context, nothing started
	sp.StartRun(context.Background())
	assert.Empty(t, sp.runs)

	ctx, _ := newTestChatContext()
	assert.Nil(t, sp.getRun(ctx))
}

func TestScratchpad_OnCallbacks(t *testing.T) {
	t.Parallel()
	sp := NewScratchpad(ModeVerbose)
	ctx, _ := newTestChatContext()
	sp.StartRun(ctx)
	tool := &fakeTool{name: "render_mermaid"}

	sp.OnToolStart(ctx, tool, "tinput")
	sp.OnToolEnd(ctx, tool, "tinput", "![Diagram](/storage/mermaid/a.png)")
	sp.OnToolStart(ctx, tool, "tinput")
	sp.OnToolError(ctx, tool, "tinput", errors.New("terr"))
	sp.OnToolNotFound(ctx, "render_plantuml")

	stats, output := sp.EndRun(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, uint32(2), stats.ToolsCalls)
	assert.Equal(t, uint32(1), stats.ToolsCallsSucceeded)
	assert.Equal(t, uint32(1), stats.ToolsCallsFailed)
	assert.Equal(t, uint32(1), stats.ToolNotFound)
	assert.Equal(t, uint64(len("![Diagram](/storage/mermaid/a.png)")), stats.OutputBytes)

	outStr := string(output)
	assert.Contains(t, outStr, "render_mermaid *** Tool Start ***")
	assert.Contains(t, outStr, "render_mermaid Output: ![Diagram](/storage/mermaid/a.png)")
	assert.Contains(t, outStr, "render_mermaid *** Tool End ***")
	assert.Contains(t, outStr, "render_mermaid *** Tool Error *** terr")
	assert.Contains(t, outStr, "*** Tool Not Found *** render_plantuml")

	// no run
	sp.OnToolStart(ctx, tool, "tinput")
	sp.OnToolEnd(ctx, tool, "tinput", "toutput")
	sp.OnToolError(ctx, tool, "tinput", errors.New("terr2"))
	sp.OnToolNotFound(ctx, "T3")
	assert.Empty(t, sp.runs)
}

func Test_run_print_format(t *testing.T) {
	_, chatCtx := newTestChatContext()
	r := &run{chatCtx: chatCtx}
	oldTimeFn := TimeNowFn
	TimeNowFn = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	defer func() { TimeNowFn = oldTimeFn }()

	r.print("hello", "again")
	lines := strings.Split(r.w.String(), "\n")
	require.NotEmpty(t, lines[0])
	assert.Equal(t, "2024-01-01 12:00:00 "+chatCtx.GetChatID()+" hello again", lines[0])
}
