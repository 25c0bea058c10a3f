package normalizer

// Shape identifies how an inbound payload is laid out
type Shape int

const (
	// ShapeUnknown is any JSON value that is not a task, a wrapped task or a list
	ShapeUnknown Shape = iota
	// ShapeDirect is a bare task object as sent by ClickUp
	ShapeDirect
	// ShapeWrapped is a task nested under a "task" key, as sent by Make.com scenarios
	ShapeWrapped
	// ShapeArray is a list of tasks, each of which is detected independently
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeDirect:
		return "direct"
	case ShapeWrapped:
		return "wrapped"
	case ShapeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Payload is the result of shape detection. Task is set for direct and wrapped
// payloads, Items for arrays.
type Payload struct {
	Shape Shape
	Task  map[string]any
	Items []Payload
	Raw   any
}

// Detect resolves the layout of a decoded JSON value. Nested arrays are not
// flattened; an array element that is itself an array is reported as unknown.
func Detect(raw any) Payload {
	return detect(raw, true)
}

func detect(raw any, allowArray bool) Payload {
	switch v := raw.(type) {
	case map[string]any:
		if inner, ok := v["task"].(map[string]any); ok {
			return Payload{Shape: ShapeWrapped, Task: inner, Raw: raw}
		}
		return Payload{Shape: ShapeDirect, Task: v, Raw: raw}
	case []any:
		if !allowArray {
			return Payload{Shape: ShapeUnknown, Raw: raw}
		}
		items := make([]Payload, 0, len(v))
		for _, item := range v {
			items = append(items, detect(item, false))
		}
		return Payload{Shape: ShapeArray, Items: items, Raw: raw}
	default:
		return Payload{Shape: ShapeUnknown, Raw: raw}
	}
}

// IsTask reports whether the payload carries a single task object
func (p Payload) IsTask() bool {
	return p.Shape == ShapeDirect || p.Shape == ShapeWrapped
}
