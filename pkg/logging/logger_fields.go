package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain helpers

func Component(name string) Field {
	return String("component", name)
}

func Path(p string) Field {
	return String("path", p)
}

// Line is a 1-based input line number
func Line(n int) Field {
	return Int("line", n)
}

func Element(symbol string) Field {
	return String("element", symbol)
}

func Atoms(n int) Field {
	return Int("atoms", n)
}

func Edges(n int) Field {
	return Int("edges", n)
}

// Scaling keeps the float32 so the logged value reads like the output name.
func Scaling(s float32) Field {
	return Field{Key: "scaling", Value: s}
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
