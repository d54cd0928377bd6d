package udf

// InitConfig is the extension's view of the host's UDF_INIT during setup.
// The shim has already set MaybeNull from the declared output type when the
// constructor sees it; the constructor may still override any field.
type InitConfig struct {
	raw *UDFInit
}

// SetMaybeNull declares whether the function can return NULL.
func (c *InitConfig) SetMaybeNull(nullable bool) {
	c.raw.MaybeNull = boolByte(nullable)
}

// SetDecimals sets the number of decimals of a REAL result.
func (c *InitConfig) SetDecimals(decimals uint16) {
	c.raw.Decimals = uint32(decimals)
}

// SetMaxLength sets the maximum length of the result.
func (c *InitConfig) SetMaxLength(maxLength uint32) {
	c.raw.MaxLength = ULong(maxLength)
}

// SetConstItem declares that the function returns the same value for every
// row of a statement.
func (c *InitConfig) SetConstItem(constItem bool) {
	c.raw.ConstItem = boolByte(constItem)
}

// MaybeNull returns the current nullability declaration.
func (c *InitConfig) MaybeNull() bool { return c.raw.MaybeNull != 0 }

// Decimals returns the current decimals setting.
func (c *InitConfig) Decimals() uint32 { return c.raw.Decimals }

// MaxLength returns the current maximum result length.
func (c *InitConfig) MaxLength() uint64 { return uint64(c.raw.MaxLength) }

// ConstItem reports whether the function is declared constant.
func (c *InitConfig) ConstItem() bool { return c.raw.ConstItem != 0 }

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
