package mp4mux

import "errors"

var (
	// ErrHeaderNotWritten is returned when packets are written before WriteHeader.
	ErrHeaderNotWritten = errors.New("mp4mux: header not written")

	// ErrHeaderWritten is returned when streams are added or the header is written twice.
	ErrHeaderWritten = errors.New("mp4mux: header already written")

	// ErrFinalized is returned for any write after WriteTrailer.
	ErrFinalized = errors.New("mp4mux: muxer finalized")

	// ErrNoVideoStream is returned when WriteHeader is called without a video stream.
	ErrNoVideoStream = errors.New("mp4mux: no video stream")

	// ErrUnknownStream is returned for packets tagged with an unregistered stream index.
	ErrUnknownStream = errors.New("mp4mux: unknown stream index")
)
