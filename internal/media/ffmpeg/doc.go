// Package ffmpeg builds and executes ffmpeg command lines for the clip
// pipeline: full-audio extraction for speech models, frame-accurate clip
// cuts, thumbnail grabs, and concat-demuxer reel assembly.
//
// Argument construction is separated from execution so tests can assert on
// exact command lines via a fake Runner.
package ffmpeg
