package state

// Options is the plain record of shell options spec §4.3 and §6
// describe, mutated by the `set` built-in and by command-line flag
// parsing. All options default false.
type Options struct {
	Allexport bool // -a
	Notify    bool // -b
	NoClobber bool // -C
	Errexit   bool // -e
	Nolog     bool // no-op, historical
	Hashall   bool // -h
	Monitor   bool // -m / -o monitor
	Noexec    bool // -n
	Noglob    bool // -f
	Nounset   bool // -u
	Verbose   bool // -v
	Xtrace    bool // -x
	Vi        bool // -o vi
	IgnoreEOF bool // -o ignoreeof
	Interactive bool
	StdInput    bool // -s
}

// shortFlag maps a single-letter `set`/command-line option to the field
// it toggles.
var shortFlag = map[byte]func(*Options, bool){
	'a': func(o *Options, v bool) { o.Allexport = v },
	'b': func(o *Options, v bool) { o.Notify = v },
	'C': func(o *Options, v bool) { o.NoClobber = v },
	'e': func(o *Options, v bool) { o.Errexit = v },
	'f': func(o *Options, v bool) { o.Noglob = v },
	'h': func(o *Options, v bool) { o.Hashall = v },
	'm': func(o *Options, v bool) { o.Monitor = v },
	'n': func(o *Options, v bool) { o.Noexec = v },
	'u': func(o *Options, v bool) { o.Nounset = v },
	'v': func(o *Options, v bool) { o.Verbose = v },
	'x': func(o *Options, v bool) { o.Xtrace = v },
}

// longFlag maps a `set -o NAME`/`set +o NAME` option name to the field
// it toggles, for the named long options spec §4.3 lists.
var longFlag = map[string]func(*Options, bool){
	"allexport":   func(o *Options, v bool) { o.Allexport = v },
	"notify":      func(o *Options, v bool) { o.Notify = v },
	"noclobber":   func(o *Options, v bool) { o.NoClobber = v },
	"errexit":     func(o *Options, v bool) { o.Errexit = v },
	"noglob":      func(o *Options, v bool) { o.Noglob = v },
	"hashall":     func(o *Options, v bool) { o.Hashall = v },
	"monitor":     func(o *Options, v bool) { o.Monitor = v },
	"noexec":      func(o *Options, v bool) { o.Noexec = v },
	"nounset":     func(o *Options, v bool) { o.Nounset = v },
	"verbose":     func(o *Options, v bool) { o.Verbose = v },
	"xtrace":      func(o *Options, v bool) { o.Xtrace = v },
	"vi":          func(o *Options, v bool) { o.Vi = v },
	"ignoreeof":   func(o *Options, v bool) { o.IgnoreEOF = v },
	"interactive": func(o *Options, v bool) { o.Interactive = v },
}

// SetShort applies a short-flag option letter, returning false if the
// letter is not a recognized option.
func (o *Options) SetShort(letter byte, value bool) bool {
	fn, ok := shortFlag[letter]
	if !ok {
		return false
	}
	fn(o, value)
	return true
}

// SetLong applies a `-o`/`+o` long option name, returning false if the
// name is not recognized.
func (o *Options) SetLong(name string, value bool) bool {
	fn, ok := longFlag[name]
	if !ok {
		return false
	}
	fn(o, value)
	return true
}

// LongNames returns every long option name in a stable order, for `set
// -o` listing output.
func LongNames() []string {
	return []string{
		"allexport", "notify", "noclobber", "errexit", "noglob",
		"hashall", "monitor", "noexec", "nounset", "verbose", "xtrace",
		"vi", "ignoreeof", "interactive",
	}
}

// Get reports the current value of a long option name.
func (o *Options) Get(name string) (bool, bool) {
	switch name {
	case "allexport":
		return o.Allexport, true
	case "notify":
		return o.Notify, true
	case "noclobber":
		return o.NoClobber, true
	case "errexit":
		return o.Errexit, true
	case "noglob":
		return o.Noglob, true
	case "hashall":
		return o.Hashall, true
	case "monitor":
		return o.Monitor, true
	case "noexec":
		return o.Noexec, true
	case "nounset":
		return o.Nounset, true
	case "verbose":
		return o.Verbose, true
	case "xtrace":
		return o.Xtrace, true
	case "vi":
		return o.Vi, true
	case "ignoreeof":
		return o.IgnoreEOF, true
	case "interactive":
		return o.Interactive, true
	}
	return false, false
}
