package player

import (
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoPlayer is returned when no candidate player could be started
var ErrNoPlayer = errors.New("no candidate players found")

// Launcher opens playback URLs in an external player
type Launcher struct {
	command string   // configured player command, empty to auto-detect
	args    []string // additional arguments for the player
	goos    string
	logger  *slog.Logger

	// process hooks, replaced in tests
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error // async, does not wait
	run      func(name string, args ...string) error // waits for exit
}

// launchPath defines a single way to launch a player
type launchPath struct {
	path      string   // Command path: "mpv", "vlc", or "open-a:AppName"
	openFlags []string // For "open-a:" paths only - flags for macOS open command (e.g., ["-n"])
}

// players maps a player name to its launch paths per platform
var players = map[string]map[string][]launchPath{
	"mpv": {
		"darwin":  {{path: "mpv"}},
		"linux":   {{path: "mpv"}},
		"windows": {{path: "mpv"}},
	},
	"vlc": {
		"darwin": {
			{path: "vlc"},
			{path: "open-a:VLC"},
		},
		"linux":   {{path: "vlc"}},
		"windows": {{path: "vlc"}},
	},
	"iina": {
		"darwin": {{path: "open-a:IINA", openFlags: []string{"-n"}}}, // IINA needs -n for new windows
	},
	"celluloid": {
		"linux": {{path: "celluloid"}},
	},
	"potplayer": {
		"windows": {{path: "PotPlayerMini64.exe"}, {path: "PotPlayerMini.exe"}},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "vlc", "mpv"},
	"linux":   {"mpv", "celluloid", "vlc"},
	"windows": {"vlc", "mpv", "potplayer"},
}

// NewLauncher creates a launcher for the configured command. An empty
// command tries known players before falling back to the system handler.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		goos:     runtime.GOOS,
		logger:   logger,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Launch opens url in the configured player or system default
func (l *Launcher) Launch(url string) error {
	// Tier 1: User configured a specific player
	if l.command != "" {
		l.logger.Info("using configured player", "command", l.command)
		return l.launchConfigured(url)
	}

	// Tier 2: Try candidate chain (IINA → VLC → mpv on macOS, etc.)
	if _, err := l.detectAndLaunch(url); err == nil {
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	l.logger.Info("no candidate players found, using system default")
	return l.launchDefault(url)
}

// openArgs builds the argument list for macOS "open -a"
func openArgs(appName, url string, playerArgs, openFlags []string) []string {
	cmdArgs := append([]string{}, openFlags...)
	cmdArgs = append(cmdArgs, "-a", appName)
	if len(playerArgs) > 0 {
		cmdArgs = append(cmdArgs, "--args")
		cmdArgs = append(cmdArgs, playerArgs...)
	}
	return append(cmdArgs, url)
}

// detectAndLaunch tries candidate players in order.
// Returns the player name that succeeded.
func (l *Launcher) detectAndLaunch(url string) (string, error) {
	candidates, ok := candidatePlayers[l.goos]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, name := range candidates {
		paths, ok := players[name][l.goos]
		if !ok {
			l.logger.Debug("player not available on this platform", "player", name, "platform", l.goos)
			continue
		}

		for _, lp := range paths {
			var err error
			if appName, isApp := strings.CutPrefix(lp.path, "open-a:"); isApp {
				// run waits, so a missing app reports an error
				err = l.run("open", openArgs(appName, url, nil, lp.openFlags)...)
			} else if _, err = l.lookPath(lp.path); err == nil {
				err = l.start(lp.path, url)
			}

			if err == nil {
				l.logger.Info("launched with detected player", "player", name, "path", lp.path)
				return name, nil
			}
			l.logger.Debug("launch path not available", "player", name, "path", lp.path, "error", err)
		}
	}

	return "", ErrNoPlayer
}

// launchConfigured launches the media using the configured player
func (l *Launcher) launchConfigured(url string) error {
	args := append([]string{}, l.args...)

	l.logger.Info("launching player", "command", l.command, "args", args, "url", url)

	// On macOS, launch GUI apps with 'open -a' when the command is not in PATH
	if l.goos == "darwin" {
		if _, err := l.lookPath(l.command); err != nil {
			var openFlags []string
			base := strings.ToLower(filepath.Base(l.command))
			base = strings.TrimSuffix(base, filepath.Ext(base))
			for _, lp := range players[base]["darwin"] {
				if strings.HasPrefix(lp.path, "open-a:") {
					openFlags = lp.openFlags
					break
				}
			}
			return l.start("open", openArgs(l.command, url, args, openFlags)...)
		}
	}

	return l.start(l.command, append(args, url)...)
}

// launchDefault opens the URL using the system default handler
func (l *Launcher) launchDefault(url string) error {
	l.logger.Info("launching with system default", "os", l.goos, "url", url)

	switch l.goos {
	case "darwin":
		return l.start("open", url)
	case "windows":
		return l.start("cmd", "/c", "start", "", url)
	default:
		return l.start("xdg-open", url)
	}
}
