// Package batch turns configured jobs into Deep Zoom pyramids on disk.
//
// A job expands into targets, each pairing its input files with an output
// directory and pyramid name. For a target called name in directory dir the
// runner writes
//
//	dir/name.dzi          descriptor
//	dir/name_files/...    tiles, <level>/<col>_<row>.<format>
//	dir/name.tar.zst      instead of the two above, when archiving
//	dir/name.b3sum        BLAKE3 checksums, when requested
//
// Targets are independent: each decodes its own rasters and cuts its own
// canvas, so the runner converts up to Concurrency of them at once. A failing
// target cancels the targets not yet started; the first error is returned.
package batch
