package conversion

import (
	"github.com/substratelabs/gpulower/gpu"
	"github.com/substratelabs/gpulower/ir"
)

// TypeConverter maps source types to target types. Conversions are
// tried in registration order; the first one that reports a match wins.
// Converters are constructed explicitly and passed to the driver; there
// is no global registry.
type TypeConverter struct {
	conversions []func(ir.Type) (ir.Type, bool)
}

// NewTypeConverter creates an empty converter. Without any registered
// conversions, no type converts.
func NewTypeConverter() *TypeConverter {
	return &TypeConverter{}
}

// AddConversion appends a conversion rule.
func (c *TypeConverter) AddConversion(fn func(ir.Type) (ir.Type, bool)) {
	c.conversions = append(c.conversions, fn)
}

// ConvertType converts a single type. ok is false when no rule matches.
func (c *TypeConverter) ConvertType(t ir.Type) (ir.Type, bool) {
	for _, fn := range c.conversions {
		if out, ok := fn(t); ok {
			return out, true
		}
	}
	return nil, false
}

// ConvertTypes converts a type list; it fails as a whole if any element
// has no conversion.
func (c *TypeConverter) ConvertTypes(types []ir.Type) ([]ir.Type, bool) {
	out := make([]ir.Type, len(types))
	for i, t := range types {
		converted, ok := c.ConvertType(t)
		if !ok {
			return nil, false
		}
		out[i] = converted
	}
	return out, true
}

// IsConverted reports whether a type is already in target form, i.e.
// converting it yields the type itself.
func (c *TypeConverter) IsConverted(t ir.Type) bool {
	out, ok := c.ConvertType(t)
	return ok && out.Same(t)
}

// DefaultConverter returns the converter of the async lowering: memrefs
// become gpu buffers, gpu handle types and plain scalars pass through.
func DefaultConverter() *TypeConverter {
	c := NewTypeConverter()
	c.AddConversion(func(t ir.Type) (ir.Type, bool) {
		if _, ok := t.(ir.MemRefType); ok {
			return gpu.BufferType{}, true
		}
		return nil, false
	})
	c.AddConversion(func(t ir.Type) (ir.Type, bool) {
		switch t.(type) {
		case ir.IntType, ir.FloatType, ir.IndexType, ir.ComplexType:
			return t, true
		}
		return nil, false
	})
	c.AddConversion(func(t ir.Type) (ir.Type, bool) {
		switch t.(type) {
		case gpu.DeviceType, gpu.ContextType, gpu.StreamType, gpu.EventType,
			gpu.AllocatorType, gpu.BufferType, gpu.ModuleType, gpu.FunctionType,
			gpu.TokenType, gpu.DnnHandleType, gpu.DnnPoolingDescType, gpu.DnnTensorDescType:
			return t, true
		}
		return nil, false
	})
	return c
}
