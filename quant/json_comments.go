package quant

// StripJSONComments removes // line and /* block */ comments, and commas left
// trailing before a closing ] or }, so JSONC documents decode with encoding/json.
// String contents are never touched.
func StripJSONComments(in []byte) []byte {
	const (
		sNorm = iota
		sStr
		sStrEsc
		sSlash
		sLine
		sBlock
		sBlockStar
	)
	out := make([]byte, 0, len(in))
	state := sNorm
	comma := -1 // index in out of a comma that may turn out to be trailing
	for i := 0; i < len(in); i++ {
		c := in[i]
		switch state {
		case sNorm:
			switch {
			case c == '"':
				comma = -1
				out = append(out, c)
				state = sStr
			case c == '/':
				state = sSlash
			case c == ',':
				comma = len(out)
				out = append(out, c)
			case c == ']' || c == '}':
				if comma >= 0 {
					out = append(out[:comma], out[comma+1:]...)
					comma = -1
				}
				out = append(out, c)
			case c == ' ' || c == '\t' || c == '\n' || c == '\r':
				out = append(out, c)
			default:
				comma = -1
				out = append(out, c)
			}
		case sSlash:
			switch c {
			case '/':
				state = sLine
			case '*':
				state = sBlock
			default:
				comma = -1
				out = append(out, '/', c)
				state = sNorm
			}
		case sLine:
			if c == '\n' || c == '\r' {
				out = append(out, c)
				state = sNorm
			}
		case sBlock:
			if c == '*' {
				state = sBlockStar
			}
		case sBlockStar:
			if c == '/' {
				state = sNorm
			} else if c != '*' {
				state = sBlock
			}
		case sStr:
			out = append(out, c)
			if c == '\\' {
				state = sStrEsc
			} else if c == '"' {
				state = sNorm
			}
		case sStrEsc:
			out = append(out, c)
			state = sStr
		}
	}
	if state == sSlash {
		out = append(out, '/')
	}
	return out
}
