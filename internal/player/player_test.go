package player

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/log"
)

type call struct {
	name string
	args []string
	wait bool
}

// fakeProcesses records launches; commands in missing are absent from PATH
// and commands in failing fail to start
type fakeProcesses struct {
	calls   []call
	missing map[string]bool
	failing map[string]bool
}

func (f *fakeProcesses) install(l *Launcher, goos string) {
	l.goos = goos
	l.lookPath = func(file string) (string, error) {
		if f.missing[file] {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + file, nil
	}
	l.start = func(name string, args ...string) error {
		f.calls = append(f.calls, call{name: name, args: args})
		if f.failing[name] {
			return errors.New("failed")
		}
		return nil
	}
	l.run = func(name string, args ...string) error {
		f.calls = append(f.calls, call{name: name, args: args, wait: true})
		if f.failing[name] {
			return errors.New("failed")
		}
		return nil
	}
}

const videoURL = "http://video/sintel.mp4"

func TestLaunchConfiguredPlayer(t *testing.T) {
	procs := &fakeProcesses{}
	l := NewLauncher("mpv", []string{"--fs"}, log.NullLogger())
	procs.install(l, "linux")

	require.NoError(t, l.Launch(videoURL))
	assert.Equal(t, []call{{name: "mpv", args: []string{"--fs", videoURL}}}, procs.calls)
}

func TestLaunchConfiguredAppOnDarwin(t *testing.T) {
	procs := &fakeProcesses{missing: map[string]bool{"IINA": true}}
	l := NewLauncher("IINA", []string{"--no-stdin"}, log.NullLogger())
	procs.install(l, "darwin")

	require.NoError(t, l.Launch(videoURL))
	assert.Equal(t, []call{{
		name: "open",
		args: []string{"-n", "-a", "IINA", "--args", "--no-stdin", videoURL},
	}}, procs.calls)
}

func TestLaunchDetectsCandidates(t *testing.T) {
	procs := &fakeProcesses{missing: map[string]bool{"mpv": true}}
	l := NewLauncher("", nil, log.NullLogger())
	procs.install(l, "linux")

	require.NoError(t, l.Launch(videoURL))
	assert.Equal(t, []call{{name: "celluloid", args: []string{videoURL}}}, procs.calls)
}

func TestLaunchFallsBackToSystemDefault(t *testing.T) {
	tests := []struct {
		goos string
		want call
	}{
		{"linux", call{name: "xdg-open", args: []string{videoURL}}},
		{"windows", call{name: "cmd", args: []string{"/c", "start", "", videoURL}}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			procs := &fakeProcesses{missing: map[string]bool{
				"mpv": true, "celluloid": true, "vlc": true,
				"PotPlayerMini64.exe": true, "PotPlayerMini.exe": true,
			}}
			l := NewLauncher("", nil, log.NullLogger())
			procs.install(l, tt.goos)

			require.NoError(t, l.Launch(videoURL))
			assert.Equal(t, []call{tt.want}, procs.calls)
		})
	}
}

func TestDetectOnDarwinWaitsForOpen(t *testing.T) {
	procs := &fakeProcesses{failing: map[string]bool{"open": true}, missing: map[string]bool{"vlc": true}}
	l := NewLauncher("", nil, log.NullLogger())
	procs.install(l, "darwin")

	name, err := l.detectAndLaunch(videoURL)
	require.NoError(t, err)
	assert.Equal(t, "mpv", name)

	require.Len(t, procs.calls, 3)
	assert.True(t, procs.calls[0].wait)
	assert.Equal(t, []string{"-n", "-a", "IINA", videoURL}, procs.calls[0].args)
	assert.Equal(t, []string{"-a", "VLC", videoURL}, procs.calls[1].args)
	assert.Equal(t, call{name: "mpv", args: []string{videoURL}}, procs.calls[2])
}

type fakeLauncher struct {
	urls []string
	err  error
}

func (f *fakeLauncher) Launch(url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

type fakeRecorder struct {
	recorded []string
	err      error
}

func (f *fakeRecorder) Record(_ context.Context, e domain.Entry) error {
	f.recorded = append(f.recorded, e.ID)
	return f.err
}

func TestPlayRecordsHistory(t *testing.T) {
	launcher := &fakeLauncher{}
	history := &fakeRecorder{err: errors.New("disk full")}
	svc := NewPlaybackService(launcher, history, log.NullLogger())

	err := svc.Play(context.Background(), domain.Entry{ID: "m1", PlaybackURL: videoURL})

	require.NoError(t, err)
	assert.Equal(t, []string{videoURL}, launcher.urls)
	assert.Equal(t, []string{"m1"}, history.recorded)
}

func TestPlayRejectsUnplayableEntry(t *testing.T) {
	launcher := &fakeLauncher{}
	svc := NewPlaybackService(launcher, nil, log.NullLogger())

	err := svc.Play(context.Background(), domain.Entry{ID: "m1", PlaybackURL: "  "})

	assert.ErrorIs(t, err, domain.ErrNotPlayable)
	assert.Empty(t, launcher.urls)
}

func TestPlayLaunchFailureSkipsHistory(t *testing.T) {
	launcher := &fakeLauncher{err: ErrNoPlayer}
	history := &fakeRecorder{}
	svc := NewPlaybackService(launcher, history, log.NullLogger())

	err := svc.Play(context.Background(), domain.Entry{ID: "m1", PlaybackURL: videoURL})

	assert.ErrorIs(t, err, ErrNoPlayer)
	assert.Empty(t, history.recorded)
}
