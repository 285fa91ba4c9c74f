package gate

// Tool identifies an external executable the pipeline depends on
type Tool string

const (
	Git   Tool = "git"
	CMake Tool = "cmake"
)

// MinimumVersions is the minimum accepted version per required tool
var MinimumVersions = map[Tool]Version{
	Git:   {Major: 2, Minor: 40, Patch: 0},
	CMake: {Major: 3, Minor: 31, Patch: 0},
}

// Platform is a host OS/architecture pair
type Platform struct {
	OS   string
	Arch string
}

func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// SupportedPlatform is the only host the pipeline knows how to drive
var SupportedPlatform = Platform{OS: "windows", Arch: "amd64"}
