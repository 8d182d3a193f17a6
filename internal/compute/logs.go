package compute

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	cbtypes "github.com/aws/aws-sdk-go-v2/service/codebuild/types"
)

// Position marks how far a log stream has been read: the timestamp of the
// last event seen and how many events with that timestamp to skip on the
// next read. CloudWatch timestamps are not unique, so the skip count is
// what keeps a re-read from duplicating events.
type Position struct {
	Timestamp int64
	Skip      int
}

type logState int

const (
	logStateStarting logState = iota + 1
	logStateWaitInProgress
	logStateTailing
	logStateJobComplete
	logStateComplete
)

// statusCheckInterval throttles build status lookups while tailing.
const statusCheckInterval = 30 * time.Second

// drainLogStream reads every event currently available past pos, handing
// each to emit, and returns the advanced position.
func (p *Provisioner) drainLogStream(ctx context.Context, logGroup, streamName string, pos Position, emit func(string)) (Position, error) {
	startTime := pos.Timestamp
	skip := pos.Skip
	var nextToken *string

	for {
		in := &cloudwatchlogs.GetLogEventsInput{
			LogGroupName:  aws.String(logGroup),
			LogStreamName: aws.String(streamName),
			StartTime:     aws.Int64(startTime),
			StartFromHead: aws.Bool(true),
		}
		if nextToken != nil {
			in.NextToken = nextToken
		}
		out, err := p.logs.GetLogEvents(ctx, in)
		if err != nil {
			return pos, fmt.Errorf("get log events: %w", err)
		}
		nextToken = out.NextForwardToken

		events := out.Events
		if len(events) == 0 {
			return pos, nil
		}
		if len(events) > skip {
			events = events[skip:]
			skip = 0
		} else {
			skip -= len(events)
			events = nil
		}
		for _, ev := range events {
			ts := aws.ToInt64(ev.Timestamp)
			if ts == pos.Timestamp {
				pos.Skip++
			} else {
				pos = Position{Timestamp: ts, Skip: 1}
			}
			emit(aws.ToString(ev.Message))
		}
	}
}

// LogsForBuild streams the CloudWatch logs of a build to stdout. With
// wait set it tails the stream until the build completes, checking the
// build status at most every 30 seconds; one extra drain after completion
// picks up events that reached CloudWatch late. Without wait it prints
// whatever is available and returns.
func (p *Provisioner) LogsForBuild(ctx context.Context, buildID string, wait bool, poll time.Duration) error {
	build, err := p.describeBuild(ctx, buildID)
	if err != nil {
		return err
	}
	status := build.BuildStatus
	logGroup, streamName := logsLocation(build)

	state := logStateComplete
	if wait && status == cbtypes.StatusTypeInProgress {
		state = logStateStarting
	}

	// a fresh build has no log stream yet
	for state == logStateStarting && logGroup == "" {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		p.sleep(poll)
		build, err = p.describeBuild(ctx, buildID)
		if err != nil {
			return err
		}
		logGroup, streamName = logsLocation(build)
	}
	if state == logStateStarting {
		state = logStateTailing
	}
	if logGroup == "" {
		return fmt.Errorf("build %s has no log group", buildID)
	}

	emit := func(msg string) { fmt.Fprintln(p.stdout, msg) }

	pos := Position{}
	lastStatusCheck := p.now()
	for {
		pos, err = p.drainLogStream(ctx, logGroup, streamName, pos, emit)
		if err != nil {
			return err
		}
		if state == logStateComplete {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		p.sleep(poll)

		switch {
		case state == logStateJobComplete:
			state = logStateComplete
		case p.now().Sub(lastStatusCheck) >= statusCheckInterval:
			build, err = p.describeBuild(ctx, buildID)
			if err != nil {
				return err
			}
			lastStatusCheck = p.now()
			if build.BuildStatus != cbtypes.StatusTypeInProgress {
				state = logStateJobComplete
			}
		}
	}
}

func logsLocation(build *cbtypes.Build) (group, stream string) {
	if build.Logs == nil {
		return "", ""
	}
	return aws.ToString(build.Logs.GroupName), aws.ToString(build.Logs.StreamName)
}

func (p *Provisioner) describeBuild(ctx context.Context, buildID string) (*cbtypes.Build, error) {
	out, err := p.build.BatchGetBuilds(ctx, &codebuild.BatchGetBuildsInput{Ids: []string{buildID}})
	if err != nil {
		return nil, fmt.Errorf("get build %s: %w", buildID, err)
	}
	if len(out.Builds) == 0 {
		return nil, fmt.Errorf("build %s not found", buildID)
	}
	return &out.Builds[0], nil
}
