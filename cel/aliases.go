package cel

// AliasPair links the GCOS spelling of an algorithm parameter name to the
// Calvin spelling of the same parameter.
type AliasPair struct {
	GCOS   string
	Calvin string
}

// parameterAliases is the complete list of renamed algorithm parameters.
// The GCOS spellings keep their historical typos.
var parameterAliases = [...]AliasPair{
	{GCOS: "IgnoreShiftRowOutliers", Calvin: "IgnoreOutliersInShiftRows"},
	{GCOS: "PoolWidthExtenstion", Calvin: "PoolWidthExtension"},
	{GCOS: "PoolHeightExtenstion", Calvin: "PoolHeightExtension"},
}

// AlgorithmParameterAliases returns a copy of the alias table.
func AlgorithmParameterAliases() []AliasPair {
	out := make([]AliasPair, len(parameterAliases))
	copy(out, parameterAliases[:])
	return out
}

// ParameterAlias returns the other spelling of name. Names without an alias
// are returned unchanged with ok false.
func ParameterAlias(name string) (alias string, ok bool) {
	for _, p := range parameterAliases {
		switch name {
		case p.GCOS:
			return p.Calvin, true
		case p.Calvin:
			return p.GCOS, true
		}
	}
	return name, false
}

// CanonicalParameterName returns the Calvin spelling of name.
func CanonicalParameterName(name string) string {
	for _, p := range parameterAliases {
		if name == p.GCOS {
			return p.Calvin
		}
	}
	return name
}
