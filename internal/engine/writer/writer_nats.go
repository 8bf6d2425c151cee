package writer

import (
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/factory"
	"Go2FlavorSpectra/internal/model"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultNATSSubject = "flavorspectra.samples"
	// FlushWithContext requires a deadline.
	natsFlushTimeout = 10 * time.Second
)

func init() {
	factory.RegisterWriter("nats", func(def config.WriterDef) (model.Writer, error) {
		if def.NATS.URL == "" {
			return nil, errors.New("nats writer requires url")
		}
		return NewNATSWriter(def.NATS)
	})
}

// NATSWriter publishes every sample as a protobuf Struct message on
// <subject>.<test>.<flavor>.
type NATSWriter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSWriter connects to the NATS server.
func NewNATSWriter(cfg config.NATSConfig) (*NATSWriter, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Infof("Connected to NATS server at %s", cfg.URL)

	subject := cfg.Subject
	if subject == "" {
		subject = defaultNATSSubject
	}
	return &NATSWriter{nc: nc, subject: subject}, nil
}

// Name implements model.Writer.
func (w *NATSWriter) Name() string {
	return "nats:" + w.subject
}

// Write publishes the dataset and waits until the server has received it.
func (w *NATSWriter) Write(ctx context.Context, dataset model.Dataset) error {
	for _, s := range dataset {
		data, err := EncodeSample(s)
		if err != nil {
			return err
		}
		if err := w.nc.Publish(SampleSubject(w.subject, s.RunID()), data); err != nil {
			return fmt.Errorf("failed to publish sample: %w", err)
		}
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, natsFlushTimeout)
		defer cancel()
	}
	if err := w.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush nats connection: %w", err)
	}
	log.Infof("Published %d samples to NATS subject '%s.>'", len(dataset), w.subject)
	return nil
}

// Close drains and closes the NATS connection.
func (w *NATSWriter) Close() error {
	return w.nc.Drain()
}

// SampleSubject builds the subject a run's samples are published on.
func SampleSubject(base string, id model.RunID) string {
	return fmt.Sprintf("%s.%s.%s", base, subjectToken(id.Test), subjectToken(id.Flavor))
}

// subjectToken replaces the characters NATS reserves inside a subject token.
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, s)
}

// EncodeSample serializes a sample as a google.protobuf.Struct with the CSV
// column names as keys.
func EncodeSample(s model.Sample) ([]byte, error) {
	msg, err := structpb.NewStruct(map[string]interface{}{
		"test_name":       s.Test,
		"tcp_flavor":      s.Flavor,
		"time_iter":       s.TimeIndex,
		"bits_per_second": s.ThroughputBps,
		"rtt_ms":          s.RTTMs,
		"cwnd_size_bytes": s.CwndBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build sample message: %w", err)
	}
	return proto.Marshal(msg)
}

// DecodeSample is the inverse of EncodeSample.
func DecodeSample(data []byte) (model.Sample, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return model.Sample{}, err
	}
	f := msg.GetFields()
	return model.Sample{
		Test:          f["test_name"].GetStringValue(),
		Flavor:        f["tcp_flavor"].GetStringValue(),
		TimeIndex:     uint64(f["time_iter"].GetNumberValue()),
		ThroughputBps: f["bits_per_second"].GetNumberValue(),
		RTTMs:         f["rtt_ms"].GetNumberValue(),
		CwndBytes:     int64(f["cwnd_size_bytes"].GetNumberValue()),
	}, nil
}
