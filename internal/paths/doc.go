// Provides platform-appropriate paths for build state.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS and Windows. The tool name "genesis" is used as the subdirectory
// under each base path. Project output directories are not handled here; the
// output tree lives under the project root.
package paths
