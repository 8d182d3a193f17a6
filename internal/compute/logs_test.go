package compute

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	cbtypes "github.com/aws/aws-sdk-go-v2/service/codebuild/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(ts int64, msg string) cwtypes.OutputLogEvent {
	return cwtypes.OutputLogEvent{Timestamp: aws.Int64(ts), Message: aws.String(msg)}
}

// pagedLogs serves queued event pages, then empty pages forever.
type pagedLogs struct {
	pages [][]cwtypes.OutputLogEvent
	calls []cloudwatchlogs.GetLogEventsInput
}

func (p *pagedLogs) GetLogEvents(_ context.Context, in *cloudwatchlogs.GetLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error) {
	p.calls = append(p.calls, *in)
	out := &cloudwatchlogs.GetLogEventsOutput{NextForwardToken: aws.String("tok")}
	if len(p.pages) > 0 {
		out.Events = p.pages[0]
		p.pages = p.pages[1:]
	}
	return out, nil
}

func TestDrainLogStreamAdvancesPosition(t *testing.T) {
	p, _ := testProvisioner(t)
	logs := &pagedLogs{pages: [][]cwtypes.OutputLogEvent{
		{event(100, "one"), event(100, "two"), event(200, "three")},
	}}
	p.logs = logs

	var seen []string
	pos, err := p.drainLogStream(context.Background(), "group", "stream", Position{}, func(msg string) {
		seen = append(seen, msg)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, seen)
	// two events shared timestamp 100, the last one moved the cursor
	assert.Equal(t, Position{Timestamp: 200, Skip: 1}, pos)
}

func TestDrainLogStreamSkipsAlreadySeenEvents(t *testing.T) {
	p, _ := testProvisioner(t)
	logs := &pagedLogs{pages: [][]cwtypes.OutputLogEvent{
		{event(200, "already seen"), event(300, "fresh")},
	}}
	p.logs = logs

	var seen []string
	pos, err := p.drainLogStream(context.Background(), "group", "stream", Position{Timestamp: 200, Skip: 1}, func(msg string) {
		seen = append(seen, msg)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, seen)
	assert.Equal(t, Position{Timestamp: 300, Skip: 1}, pos)
	// the read starts at the cursor timestamp
	assert.Equal(t, int64(200), aws.ToInt64(logs.calls[0].StartTime))
}

func TestDrainLogStreamSkipSpansPages(t *testing.T) {
	p, _ := testProvisioner(t)
	logs := &pagedLogs{pages: [][]cwtypes.OutputLogEvent{
		{event(100, "a")},
		{event(100, "b"), event(100, "c")},
	}}
	p.logs = logs

	var seen []string
	_, err := p.drainLogStream(context.Background(), "group", "stream", Position{Timestamp: 100, Skip: 2}, func(msg string) {
		seen = append(seen, msg)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, seen)
}

type scriptedBuilds struct {
	statuses  []cbtypes.StatusType
	logGroup  string
	groupFrom int // first describe call that reports a log group
	calls     int
}

func (s *scriptedBuilds) describe(in *codebuild.BatchGetBuildsInput) (*codebuild.BatchGetBuildsOutput, error) {
	call := s.calls
	s.calls++
	idx := call
	if idx >= len(s.statuses) {
		idx = len(s.statuses) - 1
	}
	build := cbtypes.Build{Id: aws.String(in.Ids[0]), BuildStatus: s.statuses[idx]}
	if s.logGroup != "" && call >= s.groupFrom {
		build.Logs = &cbtypes.LogsLocation{
			GroupName:  aws.String(s.logGroup),
			StreamName: aws.String("stream"),
		}
	}
	return &codebuild.BatchGetBuildsOutput{Builds: []cbtypes.Build{build}}, nil
}

func TestLogsForBuildWithoutWaitPrintsAvailableLogs(t *testing.T) {
	p, _ := testProvisioner(t)
	builds := &scriptedBuilds{
		statuses: []cbtypes.StatusType{cbtypes.StatusTypeInProgress},
		logGroup: "group",
	}
	p.build = &fakeCodeBuild{batchGetBuilds: builds.describe}
	p.logs = &pagedLogs{pages: [][]cwtypes.OutputLogEvent{
		{event(100, "line 1"), event(200, "line 2")},
	}}
	var out bytes.Buffer
	p.stdout = &out

	err := p.LogsForBuild(context.Background(), "build-1", false, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2\n", out.String())
	assert.Equal(t, 1, builds.calls)
}

func TestLogsForBuildWaitsForLogStream(t *testing.T) {
	p, _ := testProvisioner(t)
	// a fresh build reports no log group on its first two describes
	builds := &scriptedBuilds{
		statuses: []cbtypes.StatusType{
			cbtypes.StatusTypeInProgress,
			cbtypes.StatusTypeInProgress,
			cbtypes.StatusTypeInProgress,
			cbtypes.StatusTypeSucceeded,
		},
		logGroup:  "group",
		groupFrom: 2,
	}
	p.build = &fakeCodeBuild{batchGetBuilds: builds.describe}
	p.logs = &pagedLogs{pages: [][]cwtypes.OutputLogEvent{
		{event(100, "building")},
		{},
		{event(500, "pushed image")},
	}}
	var out bytes.Buffer
	p.stdout = &out

	err := p.LogsForBuild(context.Background(), "build-1", true, 10*time.Second)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "building")
	assert.Contains(t, out.String(), "pushed image")
	// initial describe, two polls for the log group, one status check
	assert.Equal(t, 4, builds.calls)
}

func TestLogsForBuildTailsUntilCompletion(t *testing.T) {
	p, clock := testProvisioner(t)
	builds := &scriptedBuilds{
		statuses: []cbtypes.StatusType{
			cbtypes.StatusTypeInProgress,
			cbtypes.StatusTypeSucceeded,
		},
		logGroup: "group",
	}
	p.build = &fakeCodeBuild{batchGetBuilds: builds.describe}
	p.logs = &pagedLogs{pages: [][]cwtypes.OutputLogEvent{
		{event(100, "building")},
		{}, {},
		{event(500, "pushed image")},
	}}
	var out bytes.Buffer
	p.stdout = &out

	start := clock.now()
	err := p.LogsForBuild(context.Background(), "build-1", true, 10*time.Second)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "building")
	assert.Contains(t, out.String(), "pushed image")
	// status checks happen at most every 30 seconds
	assert.GreaterOrEqual(t, clock.now().Sub(start), 30*time.Second)
}
