package builder

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Shell wrapper running provisioning scripts with root privileges while
// keeping the forwarded environment.
const executeCommand = "sudo -S env {{ .Vars }} {{ .Path }}"

// Renders the main Packer build file for one invocation.
//
// The file declares the output_directory and image_name variables consumed
// by the profile source definition, and a build block with one file+move
// provisioner pair per staged dependency, the image's shell provisioner with
// its forwarded environment, and an optional developer-key provisioner.
func renderBuildFile(inv Invocation) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	appendStringVariable(root, "output_directory", inv.OutputDir)
	root.AppendNewline()
	appendStringVariable(root, "image_name", inv.Image.Name)
	root.AppendNewline()

	build := root.AppendNewBlock("build", nil).Body()

	source := build.AppendNewBlock("source", []string{inv.Params.SourceName}).Body()
	source.SetAttributeValue("name", cty.StringVal(inv.Image.Name))
	build.AppendNewline()

	for i, dep := range inv.Deps {
		appendDependencyProvisioners(build, i, dep.Dst, dep.Local)
	}

	shell := build.AppendNewBlock("provisioner", []string{"shell"}).Body()
	shell.SetAttributeValue("execute_command", cty.StringVal(executeCommand))
	shell.SetAttributeValue("script", cty.StringVal(inv.Image.Script))
	shell.SetAttributeValue("env", envValue(inv.Params.Env))

	if inv.DeveloperKeys != "" {
		build.AppendNewline()
		keys := build.AppendNewBlock("provisioner", []string{"file"}).Body()
		keys.SetAttributeValue("source", cty.StringVal(filepath.Join(inv.WorkDir, devKeysFileName)))
		keys.SetAttributeValue("destination", cty.StringVal("/tmp/"+devKeysFileName))
	}

	return f.Bytes()
}

// Appends the provisioner pair staging one dependency into the image: a file
// upload into /tmp followed by a privileged move to the declared destination.
func appendDependencyProvisioners(build *hclwrite.Body, index int, dst, local string) {
	tmp := path.Join("/tmp", fmt.Sprintf("%s_%d", path.Base(dst), index))

	file := build.AppendNewBlock("provisioner", []string{"file"}).Body()
	file.SetAttributeValue("source", cty.StringVal(local))
	file.SetAttributeValue("destination", cty.StringVal(tmp))

	move := build.AppendNewBlock("provisioner", []string{"shell"}).Body()
	move.SetAttributeValue("inline", cty.ListVal([]cty.Value{
		cty.StringVal("sudo mkdir -p " + path.Dir(dst)),
		cty.StringVal("sudo mv " + tmp + " " + dst),
	}))
	build.AppendNewline()
}

// Renders the auto-loaded variable override file from the merged parameter
// bag. Keys are emitted in sorted order so the rendering is deterministic.
func renderVarsFile(vars map[string]any) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, err := ctyValue(vars[k])
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", k, err)
		}
		root.SetAttributeValue(k, v)
	}

	return f.Bytes(), nil
}

// Declares a string variable with a default value.
func appendStringVariable(root *hclwrite.Body, name, value string) {
	body := root.AppendNewBlock("variable", []string{name}).Body()
	body.SetAttributeRaw("type", identTokens("string"))
	body.SetAttributeValue("default", cty.StringVal(value))
}

// Converts a forwarded environment map to an HCL map value.
func envValue(env map[string]string) cty.Value {
	if len(env) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	vals := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vals[k] = cty.StringVal(v)
	}
	return cty.MapVal(vals)
}

// Converts a decoded YAML value to a cty value for HCL rendering.
func ctyValue(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(t))
		for i, e := range t {
			ev, err := ctyValue(e)
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(t) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(t))
		for k, e := range t {
			ev, err := ctyValue(e)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value type %T", v)
	}
}

// Returns raw tokens for a bare identifier expression (e.g. a type name).
func identTokens(name string) hclwrite.Tokens {
	return hclwrite.Tokens{
		{Type: hclsyntax.TokenIdent, Bytes: []byte(name)},
	}
}
