// Package render turns the clip analysis into files on disk: it re-encodes
// each selected time range out of the source, writes clip-relative SRT
// subtitles (optionally burned into the video), and captures thumbnails.
// Everything lands in the item's staging directory for export to pick up.
package render
