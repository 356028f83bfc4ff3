package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/longpoll"
	"github.com/vadiminshakov/sasaft/core/receipt"
	"github.com/vadiminshakov/sasaft/core/registration"
	"github.com/vadiminshakov/sasaft/io/gateway/grpc/proto"
	"github.com/vadiminshakov/sasaft/io/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ErrNoReply is returned when the machine stayed silent.
var ErrNoReply = errors.New("no reply from machine")

const (
	dialTimeout       = 10 * time.Second
	reconnectBase     = 100 * time.Millisecond
	reconnectMax      = 10 * time.Second
	minConnectTimeout = 200 * time.Millisecond
)

// HostClient talks to one machine over the host link, building and reading
// long poll frames the way a SAS host does.
type HostClient struct {
	Connection proto.HostLinkClient
	Address    byte

	conn *grpc.ClientConn
}

// New creates instance of host client.
// 'addr' is the machine's host link address (host + port), 'address' its SAS address.
func New(addr string, address byte) (*HostClient, error) {
	conn, err := dial(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "host link %s", addr)
	}
	return &HostClient{Connection: proto.NewHostLinkClient(conn), Address: address, conn: conn}, nil
}

// dial opens a plaintext host link, retrying with backoff.
func dial(addr string) (*grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, addr,
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  reconnectBase,
				Multiplier: backoff.DefaultConfig.Multiplier,
				Jitter:     backoff.DefaultConfig.Jitter,
				MaxDelay:   reconnectMax,
			},
			MinConnectTimeout: minConnectTimeout,
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect")
	}
	return conn, nil
}

func (c *HostClient) Close() error {
	return c.conn.Close()
}

// Poll sends a raw frame and returns the raw reply.
func (c *HostClient) Poll(ctx context.Context, frame []byte) ([]byte, error) {
	resp, err := c.Connection.Poll(ctx, wrapperspb.Bytes(frame))
	if err != nil {
		return nil, err
	}
	if len(resp.GetValue()) == 0 {
		return nil, ErrNoReply
	}
	return resp.GetValue(), nil
}

func (c *HostClient) call(ctx context.Context, cmd byte, body []byte, withLength bool) ([]byte, error) {
	reply, err := c.Poll(ctx, wire.Frame(c.Address, cmd, body, withLength))
	if err != nil {
		return nil, err
	}
	_, got, payload, err := wire.ParseFrame(reply, true)
	if err != nil {
		return nil, errors.Wrap(err, "parse reply")
	}
	if got != cmd {
		return nil, errors.Errorf("reply to 0x%02X for command 0x%02X", got, cmd)
	}
	return payload, nil
}

// TransferFunds sends long poll 72.
func (c *HostClient) TransferFunds(ctx context.Context, req dto.TransferRecord) (dto.TransferRecord, error) {
	body, err := longpoll.EncodeTransferRequest(req)
	if err != nil {
		return dto.TransferRecord{}, err
	}
	payload, err := c.call(ctx, longpoll.CommandTransferFunds, body, true)
	if err != nil {
		return dto.TransferRecord{}, err
	}
	return longpoll.DecodeTransferResponse(payload)
}

// Interrogate reads the current transfer (index 0) or a history slot.
func (c *HostClient) Interrogate(ctx context.Context, index uint8) (dto.TransferRecord, error) {
	return c.TransferFunds(ctx, dto.TransferRecord{TransferCode: dto.TransferInterrogate, TransactionIndex: index})
}

// RequestLock sends long poll 74.
func (c *HostClient) RequestLock(ctx context.Context, req longpoll.LockRequest) (longpoll.LockStatusReport, error) {
	body, err := longpoll.EncodeLockRequest(req)
	if err != nil {
		return longpoll.LockStatusReport{}, err
	}
	payload, err := c.call(ctx, longpoll.CommandLock, body, false)
	if err != nil {
		return longpoll.LockStatusReport{}, err
	}
	return longpoll.DecodeLockStatus(payload)
}

// Register sends long poll 73.
func (c *HostClient) Register(ctx context.Context, req registration.Request) (dto.RegistrationState, error) {
	payload, err := c.call(ctx, longpoll.CommandRegister, longpoll.EncodeRegistrationRequest(req), true)
	if err != nil {
		return dto.RegistrationState{}, err
	}
	return longpoll.DecodeRegistrationResponse(payload)
}

// SetReceiptData sends long poll 75. The machine acknowledges with its address.
func (c *HostClient) SetReceiptData(ctx context.Context, updates []receipt.Update) error {
	body, err := longpoll.EncodeReceiptData(updates)
	if err != nil {
		return err
	}
	reply, err := c.Poll(ctx, wire.Frame(c.Address, longpoll.CommandReceiptData, body, true))
	if err != nil {
		return err
	}
	if len(reply) != 1 || reply[0] != c.Address {
		return errors.Errorf("unexpected receipt data ack % X", reply)
	}
	return nil
}

// Status returns the machine's diagnostic snapshot.
func (c *HostClient) Status(ctx context.Context) (map[string]interface{}, error) {
	s, err := c.Connection.Status(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return s.AsMap(), nil
}
