package scan

import "context"

// The browser owns the physical camera and decoder; the server side only
// tracks the session. These remote implementations stand in for the
// capture and recognition boundaries: Acquire hands out a token stream and
// detections arrive over HTTP as Manager.Detected calls.

type remoteStream struct{}

func (remoteStream) Stop() {}

// RemoteCapture is the capture boundary for a browser-held camera.
type RemoteCapture struct{}

func (RemoteCapture) Acquire(ctx context.Context, _ Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return remoteStream{}, nil
}

// RemoteRecognizer is the recognition boundary for a browser-side decoder.
// Start only records that decoding is active; codes are fed in through the
// scan API.
type RemoteRecognizer struct{}

func (RemoteRecognizer) Start(onDetected func(code string)) error { return nil }

func (RemoteRecognizer) Stop() {}
