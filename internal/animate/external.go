package animate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrToolMissing is returned when an external encoder is not on PATH.
var ErrToolMissing = errors.New("animate: external tool not found")

// run executes an external command; replaced in tests.
var run = func(ctx context.Context, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s", ErrToolMissing, name)
	}
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("animate: %s: %w: %s", name, err, out)
	}
	return nil
}

// Gifski encodes frames with the gifski tool.
func Gifski(ctx context.Context, frames []string, out string, fps int) error {
	if len(frames) == 0 {
		return fmt.Errorf("animate: no frames to encode")
	}
	args := []string{"-o", out, "--fps", strconv.Itoa(fps), "--fast"}
	args = append(args, frames...)
	return run(ctx, "gifski", args...)
}

// MP4 encodes frames, in the given order, with ffmpeg. The order is passed
// through a concat list so it never depends on file name sorting.
func MP4(ctx context.Context, frames []string, out string, fps int) error {
	if len(frames) == 0 {
		return fmt.Errorf("animate: no frames to encode")
	}
	list, err := writeConcatList(frames, fps)
	if err != nil {
		return err
	}
	defer os.Remove(list)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", list,
		"-r", strconv.Itoa(fps),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		out,
	}
	return run(ctx, "ffmpeg", args...)
}

// writeConcatList writes an ffmpeg concat demuxer script showing each frame
// for 1/fps seconds. The last frame is listed twice so its duration holds.
func writeConcatList(frames []string, fps int) (string, error) {
	if fps <= 0 {
		fps = 8
	}
	f, err := os.CreateTemp("", "choromap-frames-*.txt")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("ffconcat version 1.0\n")
	dur := 1 / float64(fps)
	var last string
	for _, frame := range frames {
		abs, err := filepath.Abs(frame)
		if err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", err
		}
		last = concatQuote(abs)
		fmt.Fprintf(&sb, "file %s\nduration %.6f\n", last, dur)
	}
	fmt.Fprintf(&sb, "file %s\n", last)

	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func concatQuote(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}
