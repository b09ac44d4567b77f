package bitvavo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"bitvavo-stream/internal/num"
)

var (
	// ErrNotAnObject marks a frame whose top-level JSON value is not an
	// object, typically a partial or garbled text frame.
	ErrNotAnObject = errors.New("frame is not a JSON object")

	// ErrUnclassifiedFrame marks an object frame carrying neither an
	// "event" nor an "action" field. That is a protocol violation, but a
	// long-running consumer must not die over a single odd frame, so it is
	// an error value rather than a panic.
	ErrUnclassifiedFrame = errors.New("frame carries neither event nor action")
)

// MalformedFrameError wraps a JSON syntax or shape failure for a frame whose
// discriminator was otherwise understood.
type MalformedFrameError struct {
	Cause error
}

func (e *MalformedFrameError) Error() string { return fmt.Sprintf("malformed frame: %v", e.Cause) }
func (e *MalformedFrameError) Unwrap() error { return e.Cause }

// UnknownEventError reports an "event" discriminator outside the recognized
// set. Recoverable: the caller drops the frame and keeps reading.
type UnknownEventError struct {
	Name string
}

func (e *UnknownEventError) Error() string { return fmt.Sprintf("unknown event %q", e.Name) }

// UnknownActionError is the action-side counterpart of UnknownEventError.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string { return fmt.Sprintf("unknown action %q", e.Name) }

// TickerParseError reports a ticker/ticker24h frame that matched its
// discriminator but failed structural parsing. Kept apart from
// UnknownEventError: the caller explicitly subscribed to these events, so a
// parse failure signals schema drift rather than an ignorable stray frame.
type TickerParseError struct {
	Event string
	Cause error
}

func (e *TickerParseError) Error() string {
	return fmt.Sprintf("unparseable %s frame: %v", e.Event, e.Cause)
}
func (e *TickerParseError) Unwrap() error { return e.Cause }

// SubscriptionError reports that the exchange rejected a subscribe command.
type SubscriptionError struct {
	Message string
	Code    string
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription rejected: %s (code %s)", e.Message, e.Code)
}

// Decode classifies one raw text frame into an Event. It is a pure function:
// no state, no side effects, safe to call from any number of goroutines.
// Every failure path returns a typed error; the decoder never panics.
func Decode(frame []byte) (Event, error) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotAnObject
	}

	var probe struct {
		Event  *string `json:"event"`
		Action *string `json:"action"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, &MalformedFrameError{Cause: err}
	}

	if probe.Event != nil {
		return decodeEvent(*probe.Event, trimmed)
	}
	if probe.Action != nil {
		return decodeAction(*probe.Action, trimmed)
	}
	return nil, ErrUnclassifiedFrame
}

func decodeEvent(name string, frame []byte) (Event, error) {
	switch name {
	case "subscribed":
		return Subscribed{}, nil

	case "book":
		var book Book
		if err := json.Unmarshal(frame, &book); err != nil {
			return nil, &MalformedFrameError{Cause: err}
		}
		return book, nil

	case "candle":
		var push struct {
			Market   string              `json:"market"`
			Interval string              `json:"interval"`
			Candle   [][]json.RawMessage `json:"candle"`
		}
		if err := json.Unmarshal(frame, &push); err != nil {
			return nil, &MalformedFrameError{Cause: err}
		}
		// The exchange sends a single-element batch per push.
		if len(push.Candle) == 0 {
			return nil, &MalformedFrameError{Cause: errors.New("empty candle batch")}
		}
		candle, err := candleFromTuple(push.Candle[0])
		if err != nil {
			return nil, &MalformedFrameError{Cause: err}
		}
		candle.Market = push.Market
		candle.Interval = push.Interval
		return candle, nil

	case "trade":
		var trade Trade
		if err := json.Unmarshal(frame, &trade); err != nil {
			return nil, &MalformedFrameError{Cause: err}
		}
		return trade, nil

	case "ticker":
		var ticker Ticker
		if err := json.Unmarshal(frame, &ticker); err != nil {
			return nil, &TickerParseError{Event: name, Cause: err}
		}
		return ticker, nil

	case "ticker24h":
		var ticker Ticker24h
		if err := json.Unmarshal(frame, &ticker); err != nil {
			return nil, &TickerParseError{Event: name, Cause: err}
		}
		return ticker, nil

	default:
		return nil, &UnknownEventError{Name: name}
	}
}

func decodeAction(name string, frame []byte) (Event, error) {
	switch name {
	case "getMarkets":
		var resp struct {
			Response Markets `json:"response"`
		}
		if err := json.Unmarshal(frame, &resp); err != nil {
			return nil, &MalformedFrameError{Cause: err}
		}
		return resp.Response, nil

	case "getTickerBook":
		var resp struct {
			Response TickerBook `json:"response"`
		}
		if err := json.Unmarshal(frame, &resp); err != nil {
			return nil, &MalformedFrameError{Cause: err}
		}
		return resp.Response, nil

	case "privateGetBalance":
		var resp struct {
			Response []Balance `json:"response"`
		}
		if err := json.Unmarshal(frame, &resp); err != nil {
			return nil, &MalformedFrameError{Cause: err}
		}
		// Reshape the list into a symbol-keyed map; on duplicate symbols
		// the later entry wins.
		balances := make(Balances, len(resp.Response))
		for _, b := range resp.Response {
			balances[b.Symbol] = b
		}
		return balances, nil

	case "getBook":
		var resp struct {
			Response Book `json:"response"`
		}
		if err := json.Unmarshal(frame, &resp); err != nil {
			return nil, &MalformedFrameError{Cause: err}
		}
		return resp.Response, nil

	case "subscribe":
		var resp struct {
			Error     string          `json:"error"`
			ErrorCode json.RawMessage `json:"errorCode"`
		}
		if err := json.Unmarshal(frame, &resp); err != nil {
			return nil, &MalformedFrameError{Cause: err}
		}
		if resp.Error != "" {
			return nil, &SubscriptionError{
				Message: resp.Error,
				Code:    string(bytes.Trim(resp.ErrorCode, `"`)),
			}
		}
		return Subscribed{}, nil

	default:
		return nil, &UnknownActionError{Name: name}
	}
}

// candleFromTuple unpacks [timestamp, open, high, low, close, volume]. The
// timestamp is a JSON number; the five OHLCV fields are strings.
func candleFromTuple(tuple []json.RawMessage) (Candle, error) {
	if len(tuple) != 6 {
		return Candle{}, fmt.Errorf("candle tuple must have 6 elements, got %d", len(tuple))
	}
	var candle Candle
	if err := json.Unmarshal(tuple[0], &candle.Timestamp); err != nil {
		return Candle{}, fmt.Errorf("candle timestamp: %w", err)
	}
	for i, dst := range []*num.Decimal{
		&candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume,
	} {
		if err := json.Unmarshal(tuple[i+1], dst); err != nil {
			return Candle{}, fmt.Errorf("candle element %d: %w", i+1, err)
		}
	}
	return candle, nil
}

// IsRecoverable reports whether a decode failure is a per-frame
// classification miss the reader should log and skip. Everything else
// (malformed payloads, ticker schema drift, rejected subscriptions) deserves
// escalation to the caller.
func IsRecoverable(err error) bool {
	var unknownEvent *UnknownEventError
	var unknownAction *UnknownActionError
	return errors.Is(err, ErrNotAnObject) ||
		errors.Is(err, ErrUnclassifiedFrame) ||
		errors.As(err, &unknownEvent) ||
		errors.As(err, &unknownAction)
}

// ErrorKind returns a short stable name for a decode failure, for logs and
// metric labels.
func ErrorKind(err error) string {
	var (
		malformed    *MalformedFrameError
		unknownEvent *UnknownEventError
		unknownAct   *UnknownActionError
		ticker       *TickerParseError
		subscription *SubscriptionError
		decimal      *num.ParseError
	)
	switch {
	case errors.Is(err, ErrNotAnObject):
		return "not_an_object"
	case errors.Is(err, ErrUnclassifiedFrame):
		return "unclassified_frame"
	case errors.As(err, &ticker):
		return "unparseable_ticker"
	case errors.As(err, &subscription):
		return "subscription_rejected"
	case errors.As(err, &decimal):
		return "invalid_decimal"
	case errors.As(err, &malformed):
		return "malformed_frame"
	case errors.As(err, &unknownEvent):
		return "unknown_event"
	case errors.As(err, &unknownAct):
		return "unknown_action"
	default:
		return "other"
	}
}
