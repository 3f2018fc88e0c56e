package dyaml

// Normalize runs the full pipeline over arbitrary superset YAML: parse,
// synthesize annotations from the extracted comments, and re-encode into
// restricted form. With opt.Preserve false the output instead has every
// $human$ field stripped.
func Normalize(data []byte, opt SynthOptions) (string, error) {
	v, comments, err := Parse(data)
	if err != nil {
		return "", err
	}
	v = Synthesize(v, comments, opt)
	return Encode(v), nil
}
