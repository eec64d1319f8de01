package slam

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/pebbe/zmq4"

	"slam-feed-go/internal/trajectory"
	"slam-feed-go/internal/types"
)

const remoteTimeout = 30 * time.Second

// Remote drives an out-of-process tracker over a zmq REQ socket. The
// handshake carries the constructor arguments and returns the image scale
// configured on the tracker side; each track call is one request/reply
// round trip. Poses are accumulated locally so the trajectory can be
// written even though the tracker lives in another process.
type Remote struct {
	mu     sync.Mutex
	socket *zmq4.Socket
	scale  float64
	traj   *trajectory.Accumulator
	closed bool
}

// Dial connects to the tracker and performs the handshake.
func Dial(endpoint string, cfg Config) (*Remote, error) {
	socket, err := zmq4.NewSocket(zmq4.REQ)
	if err != nil {
		return nil, err
	}
	if err := socket.SetRcvtimeo(remoteTimeout); err != nil {
		_ = socket.Close()
		return nil, err
	}
	if err := socket.SetSndtimeo(remoteTimeout); err != nil {
		_ = socket.Close()
		return nil, err
	}
	if err := socket.SetLinger(0); err != nil {
		_ = socket.Close()
		return nil, err
	}
	if err := socket.Connect(endpoint); err != nil {
		_ = socket.Close()
		return nil, err
	}

	r := &Remote{socket: socket, scale: 1, traj: trajectory.NewAccumulator()}

	msg, err := encodeHello(cfg)
	if err != nil {
		_ = socket.Close()
		return nil, err
	}
	reply, err := r.roundTrip(msg)
	if err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("tracker handshake at %s: %w", endpoint, err)
	}
	scale, err := decodeHelloReply(reply)
	if err != nil {
		_ = socket.Close()
		return nil, err
	}
	r.scale = scale
	return r, nil
}

func (r *Remote) ImageScale() float64 {
	return r.scale
}

func (r *Remote) TrackStereo(ctx context.Context, left, right image.Image, timestamp float64) (types.Pose, error) {
	if err := ctx.Err(); err != nil {
		return types.Pose{}, err
	}
	msg, err := encodeTrack(left, right, timestamp)
	if err != nil {
		return types.Pose{}, err
	}
	reply, err := r.roundTrip(msg)
	if err != nil {
		return types.Pose{}, fmt.Errorf("track at %.6f: %w", timestamp, err)
	}
	pose, err := decodeTrackReply(reply)
	if err != nil {
		return types.Pose{}, err
	}
	r.traj.Add(pose)
	return pose, nil
}

// Shutdown asks the tracker to stop its background threads and closes the
// socket. Best effort: a tracker that is already gone only costs a recv
// timeout.
func (r *Remote) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if msg, err := encodeShutdown(); err == nil {
		if _, err := r.socket.SendBytes(msg, 0); err == nil {
			if _, err := r.socket.RecvBytes(0); err != nil {
				log.Printf("tracker shutdown reply: %v", err)
			}
		}
	}
	_ = r.socket.Close()
}

func (r *Remote) SaveTrajectory(path string, format trajectory.Format) error {
	return r.traj.Write(path, format)
}

func (r *Remote) roundTrip(msg []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("tracker connection closed")
	}
	if _, err := r.socket.SendBytes(msg, 0); err != nil {
		return nil, err
	}
	return r.socket.RecvBytes(0)
}
