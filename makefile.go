package normalize

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// A Rule is one pending Makefile target: the complete rule line and the
// recipe commands joined into one backslash-continued logical line.
type Rule struct {
	Target string
	Recipe []string
}

// Fprint writes the rule in Makefile syntax.
func (r Rule) Fprint(w io.Writer) error {
	if _, err := fmt.Fprintln(w, r.Target); err != nil {
		return err
	}
	if len(r.Recipe) == 0 {
		return nil
	}
	pw := newPrefixWriterString(w, "\t")
	if _, err := io.WriteString(pw, strings.Join(r.Recipe, " \\\n")); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Emitter produces the Makefile text that brings up and tests one tool
// module. Rules selects the self-contained rule set, Generic switches to
// pattern-variable emission usable from any including Makefile, and Dep names
// a separate dependency file to write the bringup rule into. The three
// combine the same way the corresponding command line options do.
type Emitter struct {
	Config  *Config
	Doc     string // module documentation holding the Dependencies section
	Rules   bool
	Generic bool
	Dep     string
}

// DepHeading starts the documentation section listing the module's
// dependency installation commands and package names.
const DepHeading = "\nDependencies:"

// Emit writes Makefile text to w. Plain emission is side-effect free; with a
// dependency file requested it also creates the file's directory and
// (over)writes the file, which is safe to repeat since the content only
// depends on the inputs. Dependency file names starting with "__" are
// reserved and rejected with a *GuardError.
func (e *Emitter) Emit(w io.Writer) error {
	cfg := e.Config
	dep := e.Dep
	var depDirNow, depFile, buildDir string
	switch {
	case dep != "":
		if strings.HasPrefix(dep, "__") {
			return &GuardError{Msg: "reserved dependency file name: " + dep}
		}
		d, f := path.Split(dep)
		depDirNow = strings.TrimSuffix(d, "/")
		depFile = f
		buildDir = strings.TrimPrefix(d, "_/")
	case e.Generic:
		depDirNow = strings.TrimSuffix(cfg.BuildDir, "/")
		depFile = cfg.ModuleFile + ".mk"
		dep = cfg.BuildDir + depFile
		buildDir = cfg.BuildDir
	default:
		buildDir = cfg.BuildDir
	}

	var pattern, source, python, recipePython, srcDir string
	if e.Generic {
		if e.Rules {
			fmt.Fprintln(w, e.genericHeader())
		}
		pattern = "%"
		source = "$<"
		python = "$/venv/bin/python3"
		recipePython = "$(dir $<)venv/bin/python3"
		srcDir = "$/"
		buildDir = "$/" + cfg.BuildDir
	} else {
		pattern = cfg.ModuleName
		source = cfg.ModulePath
		python = "$(PYTHON)"
		recipePython = python
	}
	ext := cfg.ModuleExt

	var rules []Rule
	embed, end := "%s", ""
	if e.Generic {
		embed, end = "( cd $(dir $<). && %s", " )"
	} else {
		if e.Rules {
			mkDep := ""
			if dep != "" {
				mkDep = " " + buildDir + pattern + ext + ".mk"
			}
			rules = []Rule{
				{Target: "bringup: " + buildDir + pattern + ext + ".bringup"},
				{Target: "tested: " + buildDir + pattern + ext + ".tested"},
				{
					Target: fmt.Sprintf("%[1]s%[2]s%[3]s.tested: %[4]s%[2]s%[3]s %[1]s%[2]s%[3]s.shebang%s",
						buildDir, pattern, ext, srcDir, mkDep),
					Recipe: []string{source + " --test > $@"},
				},
				{
					Target: fmt.Sprintf("%[1]s%[2]s%[3]s.shebang: %[4]s%[2]s%[3]s %[1]s%[2]s%[3]s.bringup",
						buildDir, pattern, ext, srcDir),
					Recipe: []string{recipePython + " " + source + " --shebang > $@"},
				},
			}
		}
		if dep != "" {
			rules = append(rules, Rule{
				Target: fmt.Sprintf("%s%s: %s%s%s | %s",
					buildDir, depFile, srcDir, pattern, ext, python),
				Recipe: []string{python + " " + source + " --dep $@ > /dev/null"},
			})
		}
	}

	pip := cfg.Pip
	if pip == "" {
		pip = recipePython + " -m pip"
	}
	bringups := Extractor{Heading: DepHeading, Embed: embed, End: end, Pip: pip}.
		Extract(e.Doc)
	var commands []string
	op := ">"
	for i, g := range bringups {
		glue := " &&"
		if i == len(bringups)-1 {
			glue = ""
		}
		last := len(g.Commands) - 1
		commands = append(commands, g.Commands[:last]...)
		commands = append(commands, fmt.Sprintf("%s %s $@%s", g.Commands[last], op, glue))
		op = ">>"
	}

	depTarget := ""
	if e.Generic || dep != "" {
		depTarget = buildDir + depFile + " "
	} else {
		glue := ""
		if len(commands) > 0 {
			glue = " &&"
		}
		commands = append([]string{"mkdir -p " + buildDir + glue}, commands...)
	}
	if len(commands) == 0 {
		commands = []string{"touch $@"}
	}
	bringupIdx := len(rules)
	rules = append(rules, Rule{
		Target: fmt.Sprintf("%[1]s%[2]s%[3]s.bringup: %[4]s%[2]s%[3]s %[5]s| %[6]s",
			buildDir, cfg.ModuleName, ext, srcDir, depTarget, python),
		Recipe: commands,
	})

	for i, r := range rules {
		if i == bringupIdx && (dep != "" || e.Generic) {
			if !e.Generic {
				if _, err := fmt.Fprintln(w, "-include "+buildDir+depFile); err != nil {
					return err
				}
			}
			if buildDir != "" && depDirNow != "" {
				if err := os.MkdirAll(depDirNow, 0777); err != nil {
					return err
				}
			}
			if dep != "" {
				if err := writeDepFile(dep, r); err != nil {
					return err
				}
			}
		} else if err := r.Fprint(w); err != nil {
			return err
		}
	}
	return nil
}

func writeDepFile(name string, r Rule) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = r.Fprint(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// genericHeader is emitted once in generic mode. It makes the rule set usable
// from any including Makefile: $/ resolves to this module's directory
// relative to the including file, and the external make.mk defines the
// remaining generic targets.
func (e *Emitter) genericHeader() string {
	return fmt.Sprintf("# %s$ %s\n%s",
		e.Config.WorkName,
		strings.Join(e.Config.Argv, " "),
		genericRules,
	)
}

const genericRules = `_Makefile := $(lastword $(MAKEFILE_LIST))
/ := $(patsubst %build/,%,$(patsubst ./%,%,$(patsubst C:/%,/c/%,$(subst \,/,$(dir $(Makefile))))))
$/bringup:

# Bringup executables and define 'tested report html pdf slides audit' targets for .md .py .cpp .c .s sources here.
$/make.mk:
	if [ -e "$(dir $@)../make.mk" ]; then \
	  ln -sf ../make.mk "$@"; \
	else \
	  curl https://raw.githubusercontent.com/joakimbits/normalize/main/make.mk -o $@; \
	fi

-include $/make.mk`
