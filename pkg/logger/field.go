package logger

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type fieldKind uint8

const (
	kindAny fieldKind = iota
	kindString
	kindInt
	kindFloat
	kindBool
	kindError
)

// Field is one key/value pair on a log entry.
type Field struct {
	Key   string
	Value interface{}
	kind  fieldKind
}

func (f Field) addTo(e *zerolog.Event) {
	switch f.kind {
	case kindString:
		e.Str(f.Key, f.Value.(string))
	case kindInt:
		e.Int64(f.Key, f.Value.(int64))
	case kindFloat:
		e.Float64(f.Key, f.Value.(float64))
	case kindBool:
		e.Bool(f.Key, f.Value.(bool))
	case kindError:
		if err, _ := f.Value.(error); err != nil {
			e.Str(f.Key, err.Error())
		}
	default:
		e.Interface(f.Key, f.Value)
	}
}

// GetKeyValue returns the field as a plain pair. Errors become their message.
func (f Field) GetKeyValue() (string, interface{}) {
	switch f.kind {
	case kindInt:
		return f.Key, int(f.Value.(int64))
	case kindError:
		if err, _ := f.Value.(error); err != nil {
			return f.Key, err.Error()
		}
		return f.Key, ""
	}
	return f.Key, f.Value
}

func String(key, value string) Field {
	return Field{Key: key, Value: value, kind: kindString}
}

func Strings(key string, value []string) Field {
	return String(key, strings.Join(value, ", "))
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: int64(value), kind: kindInt}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value, kind: kindInt}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value, kind: kindFloat}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value, kind: kindBool}
}

// Duration logs whole milliseconds.
func Duration(key string, value time.Duration) Field {
	return Int64(key, value.Milliseconds())
}

func Error(err error) Field {
	return Field{Key: "error", Value: err, kind: kindError}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
