package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/josehu07/codetective/code_group"
	"github.com/josehu07/codetective/constants/lipgloss"
	"github.com/josehu07/codetective/detection"
	"github.com/josehu07/codetective/providers"
	"github.com/josehu07/codetective/utils"
)

// pasteTerminator ends multi-line textbox input.
const pasteTerminator = "EOF"

// previewMaxLines caps how many lines of a file the preview command shows.
const previewMaxLines = 20

// DetectCmd: codetective detect
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run an interactive AI-authorship detection session.",
	Long: `The 'detect' subcommand walks through a three-step session: pick an AI
provider and validate its API key, import code files from a textbox, upload,
URL, or GitHub repository, then watch the detection pass over every file.
Once the pass finishes, session commands allow retrying failed files,
exporting a JSON report, and stepping back to import different code.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		handleDetectCommand(rootDependencies)
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

// detectSession bundles the per-session state threaded through the wizard
// steps.
type detectSession struct {
	deps      *RootDependencies
	reader    *bufio.Reader
	stage     *detection.StageCell
	slot      *detection.ClientSlot
	scheduler *detection.Scheduler
}

func handleDetectCommand(rootDependencies *RootDependencies) {

	// Create a context with cancel function
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pollInterval := time.Duration(rootDependencies.Config.PollIntervalMs) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	session := &detectSession{
		deps:   rootDependencies,
		reader: bufio.NewReader(os.Stdin),
		stage:  detection.NewStageCell(),
		slot:   detection.NewClientSlot(),
	}
	session.scheduler = detection.NewScheduler(
		rootDependencies.CodeGroup, session.slot, session.stage, pollInterval)

	go utils.GracefulShutdown(ctx, func() {
		rootDependencies.TokenManagement.ClearToken()
	})

	// The scheduler loop lives for the whole session.
	go session.scheduler.Run(ctx)

	for {
		if ctx.Err() != nil {
			return
		}

		var done bool
		switch session.stage.Current() {
		case detection.StageInitial:
			done = session.stepProvider(ctx)
		case detection.StageApiProvided:
			done = session.stepImport(ctx)
		case detection.StageCodeImported:
			done = session.stepDetection(ctx)
		case detection.StageDetectionDone:
			done = session.stepResults(ctx)
		}
		if done {
			return
		}
	}
}

// stepProvider is step 1: provider selection and API key validation. Returns
// true when the session should end.
func (s *detectSession) stepProvider(ctx context.Context) bool {
	fmt.Println(lipgloss.BoxStyle.Render("Step 1/3: Choose an AI provider"))

	providerNames := []string{"openai", "claude", "gemini", "groqcl", "openrt", "free"}
	selected, err := pterm.DefaultInteractiveSelect.
		WithOptions(providerNames).
		WithDefaultOption(s.deps.Config.AIProviderConfig.Provider).
		Show("Which provider should analyze the code?")
	if err != nil {
		return true
	}

	apiKey := s.deps.Config.AIProviderConfig.ApiKey
	if selected != "free" && apiKey == "" {
		fmt.Println(lipgloss.Gray.Render("Enter the API key (leave empty to use a free quota key from env):"))
		apiKey, err = utils.InputPromptWithContext(ctx, s.reader)
		if err != nil {
			return true
		}
	}

	providerConfig := &providers.AIProviderConfig{
		Provider: selected,
		BaseURL:  s.deps.Config.AIProviderConfig.BaseURL,
		Model:    s.deps.Config.AIProviderConfig.Model,
		ApiKey:   strings.TrimSpace(apiKey),
	}

	client, err := providers.DetectionProviderFactory(providerConfig, s.deps.TokenManagement)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return false
	}

	spinner := pterm.DefaultSpinner.WithRemoveWhenDone(true)
	spinnerValidate, _ := spinner.Start(fmt.Sprintf("Validating API key with %s...", client.Name()))
	err = client.ValidateApiKey(ctx)
	spinnerValidate.Stop()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return false
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("API key validated for %s", client.Name())))
	s.slot.Set(client)
	s.stage.Advance()
	return false
}

// stepImport is step 2: populating the code group from one or more sources.
func (s *detectSession) stepImport(ctx context.Context) bool {
	fmt.Println(lipgloss.BoxStyle.Render("Step 2/3: Import code to analyze"))

	for {
		if ctx.Err() != nil {
			return true
		}

		action, err := pterm.DefaultInteractiveSelect.
			WithOptions([]string{"paste code", "upload file(s)", "remote URL / GitHub repo", "done importing"}).
			Show(fmt.Sprintf("Import source (%d file(s) so far)", s.deps.CodeGroup.NumFiles()))
		if err != nil {
			return true
		}

		switch action {
		case "paste code":
			s.importPaste()
		case "upload file(s)":
			s.importUpload(ctx)
		case "remote URL / GitHub repo":
			s.importRemote(ctx)
		case "done importing":
			if s.deps.CodeGroup.NumFiles() == 0 {
				fmt.Println(lipgloss.Yellow.Render("No files imported yet."))
				continue
			}
			s.renderFileTable()
			if s.deps.CodeGroup.HasSkipped() {
				fmt.Println(lipgloss.Yellow.Render("Some file(s) were skipped for exceeding the per-file size cap."))
			}

			// queue every imported file for the detection pass
			for _, named := range s.deps.CodeGroup.SortedFiles() {
				s.scheduler.Register(named.Path, named.File)
			}
			s.stage.Advance()
			return false
		}
	}
}

func (s *detectSession) importPaste() {
	fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("Paste the code, then a line holding only '%s':", pasteTerminator)))
	content, err := utils.ReadMultiline(s.reader, pasteTerminator)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	if err := s.deps.CodeGroup.ImportTextbox(content); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	fmt.Println(lipgloss.Green.Render("Pasted code imported."))
}

func (s *detectSession) importUpload(ctx context.Context) {
	fmt.Println(lipgloss.Gray.Render("Enter file path(s), space-separated (a single archive is extracted):"))
	line, err := utils.InputPromptWithContext(ctx, s.reader)
	if err != nil || line == "" {
		return
	}

	var files []code_group.UploadFile
	for _, path := range strings.Fields(line) {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading '%s': %v", path, err)))
			return
		}
		files = append(files, code_group.UploadFile{Name: filepath.Base(path), Data: data})
	}

	before := s.deps.CodeGroup.NumFiles()
	if err := s.deps.CodeGroup.ImportUpload(files); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("Imported %d file(s).", s.deps.CodeGroup.NumFiles()-before)))
}

func (s *detectSession) importRemote(ctx context.Context) {
	fmt.Println(lipgloss.Gray.Render("Enter a raw file URL or a GitHub repository URL:"))
	urlStr, err := utils.InputPromptWithContext(ctx, s.reader)
	if err != nil || urlStr == "" {
		return
	}

	spinner := pterm.DefaultSpinner.WithRemoveWhenDone(true)
	spinnerFetch, _ := spinner.Start("Resolving remote files...")
	before := s.deps.CodeGroup.NumFiles()
	err = s.deps.CodeGroup.ImportRemote(ctx, urlStr)
	spinnerFetch.Stop()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("Imported %d file(s).", s.deps.CodeGroup.NumFiles()-before)))
}

// stepDetection is step 3: watching the scheduler drain the queue.
func (s *detectSession) stepDetection(ctx context.Context) bool {
	fmt.Println(lipgloss.BoxStyle.Render("Step 3/3: Detection in progress"))

	spinner := pterm.DefaultSpinner.WithRemoveWhenDone(true)
	spinnerDetect, _ := spinner.Start("Analyzing files...")
	for !s.scheduler.DetectionComplete() {
		select {
		case <-ctx.Done():
			spinnerDetect.Stop()
			return true
		case <-time.After(200 * time.Millisecond):
		}
		spinnerDetect.UpdateText(fmt.Sprintf("Analyzing files... (%d/%d finished)",
			s.scheduler.FinishedCount(), s.scheduler.TotalCount()))
	}
	spinnerDetect.Stop()

	s.stage.Advance()
	s.renderResultsTable()
	return false
}

// stepResults is the post-detection session command loop.
func (s *detectSession) stepResults(ctx context.Context) bool {
	helps := "/retry  Re-queue failed files\n" +
		"/export [path]  Export results to a JSON report\n" +
		"/table  Show the results table\n" +
		"/preview [file]  Show a highlighted preview of an imported file\n" +
		"/token  Token usage information\n" +
		"/back  Step back and import different code\n" +
		"/exit  Exit from codetective"
	fmt.Println(lipgloss.BoxStyle.Render(helps))

	for {
		userInput, err := utils.InputPromptWithContext(ctx, s.reader)
		if err != nil {
			if err == context.Canceled {
				return true
			}
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			continue
		}

		switch {
		case userInput == "":
			continue

		case userInput == "/retry":
			requeued := s.scheduler.Retry()
			if requeued == 0 {
				fmt.Println(lipgloss.Yellow.Render("Nothing to retry."))
				continue
			}
			fmt.Println(lipgloss.Green.Render(fmt.Sprintf("Re-queued %d failed file(s).", requeued)))
			s.stage.RollBack() // back to the file-processing phase
			return false

		case userInput == "/export" || strings.HasPrefix(userInput, "/export "):
			path := strings.TrimSpace(strings.TrimPrefix(userInput, "/export"))
			if path == "" {
				path = s.deps.Config.ExportPath
			}
			s.exportResults(path)

		case userInput == "/table":
			s.renderResultsTable()

		case userInput == "/preview" || strings.HasPrefix(userInput, "/preview "):
			path := strings.TrimSpace(strings.TrimPrefix(userInput, "/preview"))
			if path == "" {
				fmt.Println(lipgloss.Gray.Render("Enter the path of an imported file:"))
				path, err = utils.InputPrompt(s.reader)
				if err != nil || path == "" {
					continue
				}
			}
			s.previewFile(ctx, path)

		case userInput == "/token":
			s.deps.TokenManagement.DisplayTokens(
				s.deps.Config.AIProviderConfig.Provider,
				s.deps.Config.AIProviderConfig.Model,
			)

		case userInput == "/back":
			// roll back to the import step; drop all files and statuses,
			// but keep the validated provider client
			s.scheduler.Reset()
			s.deps.CodeGroup.Reset()
			s.stage.RollBack()
			s.stage.RollBack()
			return false

		case userInput == "/exit":
			return true

		default:
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Unknown command '%s'.", userInput)))
		}
	}
}

func (s *detectSession) exportResults(path string) {
	data, err := detection.ExportResults(s.scheduler.Tasks())
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error writing report: %v", err)))
		return
	}
	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("Results exported to %s", path)))
}

// previewFile prints a highlighted head of an imported file.
func (s *detectSession) previewFile(ctx context.Context, path string) {
	rendered, err := s.renderPreview(ctx, path)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	fmt.Println(rendered)
}

// renderPreview resolves an imported path and highlights its first lines
// with the configured color theme.
func (s *detectSession) renderPreview(ctx context.Context, path string) (string, error) {
	for _, named := range s.deps.CodeGroup.SortedFiles() {
		if named.Path != path {
			continue
		}
		content, err := s.deps.CodeGroup.FetchContent(ctx, named.File)
		if err != nil {
			return "", err
		}
		return utils.RenderCodePreview(
			content, named.File.LangName(), s.deps.Config.Theme, previewMaxLines), nil
	}
	return "", fmt.Errorf("no imported file named '%s'", path)
}

// renderFileTable prints the imported files with language and size columns.
func (s *detectSession) renderFileTable() {
	tableData := pterm.TableData{{"File", "Language", "Size"}}
	for _, named := range s.deps.CodeGroup.SortedFiles() {
		size, known := named.File.GetSize()
		tableData = append(tableData, []string{
			utils.PathDisplay(named.Path),
			utils.LangDisplay(named.File.LangName()),
			utils.FormatFileSize(size, known),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()

	if total, known := s.deps.CodeGroup.TotalSize(); known {
		fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("Total size: %s", utils.FormatFileSize(total, true))))
	}
}

// renderResultsTable prints the per-file detection outcomes, coloring the
// score column on a green-red spectrum.
func (s *detectSession) renderResultsTable() {
	tableData := pterm.TableData{{"File", "Language", "Size", "AI %", "Notes"}}
	for _, task := range s.scheduler.Tasks() {
		size, known := task.File.GetSize()

		var scoreCol, notesCol string
		kind, likelihood, reasoning, message := task.Status.Snapshot()
		switch kind {
		case detection.StatusSuccess:
			scoreCol = utils.ScoreStyle(likelihood).Render(fmt.Sprintf("%d%%", likelihood))
			notesCol = reasoning
		case detection.StatusFailure:
			scoreCol = "-"
			notesCol = lipgloss.Red.Render(message)
		default:
			scoreCol = "-"
			notesCol = lipgloss.Gray.Render("still in progress")
		}

		tableData = append(tableData, []string{
			utils.PathDisplay(task.Path),
			utils.LangDisplay(task.File.LangName()),
			utils.FormatFileSize(size, known),
			scoreCol,
			notesCol,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}
