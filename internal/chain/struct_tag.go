package chain

import (
	"strings"
)

// StructTag is a parsed fully qualified struct type, e.g.
// 0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>.
type StructTag struct {
	Address           string
	Module            string
	Name              string
	GenericTypeParams []string
}

// ParseStructTag parses a type string. Primitive and vector types are not
// structs and yield false.
func ParseStructTag(typ string) (StructTag, bool) {
	typ = strings.TrimSpace(typ)
	head, generics := typ, ""
	if lt := strings.IndexByte(typ, '<'); lt >= 0 {
		if !strings.HasSuffix(typ, ">") {
			return StructTag{}, false
		}
		head, generics = typ[:lt], typ[lt+1:len(typ)-1]
	}

	parts := strings.Split(head, "::")
	if len(parts) != 3 {
		return StructTag{}, false
	}
	for _, p := range parts {
		if p == "" {
			return StructTag{}, false
		}
	}

	params, ok := splitGenerics(generics)
	if !ok {
		return StructTag{}, false
	}

	return StructTag{
		Address:           StandardizeAddress(parts[0]),
		Module:            parts[1],
		Name:              parts[2],
		GenericTypeParams: params,
	}, true
}

// splitGenerics splits at top level commas only, keeping nested generics intact.
func splitGenerics(s string) ([]string, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, false
			}
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, false
	}
	out = append(out, strings.TrimSpace(s[start:]))
	for _, p := range out {
		if p == "" {
			return nil, false
		}
	}
	return out, true
}

// String renders the tag back into its canonical text form.
func (t StructTag) String() string {
	var b strings.Builder
	b.WriteString(t.Address)
	b.WriteString("::")
	b.WriteString(t.Module)
	b.WriteString("::")
	b.WriteString(t.Name)
	if len(t.GenericTypeParams) > 0 {
		b.WriteByte('<')
		b.WriteString(strings.Join(t.GenericTypeParams, ", "))
		b.WriteByte('>')
	}
	return b.String()
}

// StandardizeAddress lowercases an account address and left pads it to 64
// hex digits with a 0x prefix.
func StandardizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	addr = strings.TrimPrefix(addr, "0x")
	if len(addr) < 64 {
		addr = strings.Repeat("0", 64-len(addr)) + addr
	}
	return "0x" + addr
}

// InModule reports whether the tag belongs to module at address and has
// exactly typeArgs generic parameters.
func (t StructTag) InModule(address, module string, typeArgs int) bool {
	return StandardizeAddress(t.Address) == StandardizeAddress(address) &&
		t.Module == module &&
		len(t.GenericTypeParams) == typeArgs
}
