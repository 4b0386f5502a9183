package templates

import (
	"html/template"
	"regexp"
	texttemplate "text/template"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

var accountSeedPattern = regexp.MustCompile(`github-user-([\w]+)`)

type AccountLookup struct{}

func (AccountLookup) Kind() Kind {
	return KindAccountLookup
}

func (a AccountLookup) GenerateRound1(in Input) (entities.FileSet, error) {
	return a.generate(in, 1)
}

// GenerateRound2 regenerates the page with the status live region and the
// account age. Nothing from the previous round needs to be carried over.
func (a AccountLookup) GenerateRound2(in Input, _ entities.FileSet) (entities.FileSet, error) {
	return a.generate(in, 2)
}

// accountSeed names the form; briefs carry it as "github-user-<seed>".
func accountSeed(brief string) string {
	if m := accountSeedPattern.FindStringSubmatch(brief); m != nil {
		return m[1]
	}
	return hashSeed(brief)
}

func (a AccountLookup) generate(in Input, round int) (entities.FileSet, error) {
	seed := accountSeed(in.Brief)
	data := struct {
		Seed     string
		Revision bool
		CSS      string
		JS       string
	}{Seed: seed, Revision: round > 1, CSS: bootstrapCSS, JS: bootstrapJS}

	page, err := render(accountPage, data)
	if err != nil {
		return nil, err
	}
	script, err := render(accountScript, data)
	if err != nil {
		return nil, err
	}

	usage := "Enter a GitHub username to see the account creation date (UTC, YYYY-MM-DD) in #github-created-at."
	if round > 1 {
		usage += " Lookup progress is announced in #github-status and the account age appears in #github-account-age."
	}

	return entities.FileSet{
		"index.html": page,
		"script.js":  script,
		"README.md": readme{
			Title:  "GitHub User Lookup",
			Brief:  in.Brief,
			Round:  round,
			Setup:  []string{"Clone this repository", "Open index.html in a web browser", "No additional setup required"},
			Usage:  usage,
			Checks: in.Checks,
		}.Bytes(),
	}, nil
}

var accountPage = template.Must(template.New("account-index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>GitHub User Lookup</title>
    <link href="{{.CSS}}" rel="stylesheet">
</head>
<body>
    <div class="container mt-5">
        <h1>GitHub Account Creation Date</h1>
        <form id="github-user-{{.Seed}}" class="mt-4">
            <div class="mb-3">
                <label for="username" class="form-label">GitHub Username</label>
                <input type="text" class="form-control" id="username" required>
            </div>
            <div class="mb-3">
                <label for="token" class="form-label">GitHub Token (Optional)</label>
                <input type="password" class="form-control" id="token">
            </div>
            <button type="submit" class="btn btn-primary">Lookup</button>
        </form>
{{- if .Revision}}
        <div id="github-status" class="mt-3" aria-live="polite"></div>
{{- end}}
        <div id="result" class="mt-4" style="display: none;">
            <div class="card">
                <div class="card-body">
                    <h5 class="card-title">Account Information</h5>
                    <p class="card-text">Creation Date: <span id="github-created-at"></span></p>
{{- if .Revision}}
                    <p class="card-text">Account Age: <span id="github-account-age"></span> years</p>
{{- end}}
                </div>
            </div>
        </div>
    </div>
    <script src="{{.JS}}"></script>
    <script src="script.js"></script>
</body>
</html>
`))

var accountScript = texttemplate.Must(texttemplate.New("account-script").Parse(`document.getElementById('github-user-{{.Seed}}').addEventListener('submit', async function (e) {
    e.preventDefault();

    const username = document.getElementById('username').value.trim();
    const token = document.getElementById('token').value.trim();
{{- if .Revision}}
    const status = document.getElementById('github-status');
{{- end}}

    if (!username) {
        alert('Please enter a GitHub username');
        return;
    }

    try {
{{- if .Revision}}
        status.textContent = 'Looking up ' + username + '...';
{{- end}}
        const headers = {};
        if (token) {
            headers['Authorization'] = 'Bearer ' + token;
        }

        const response = await fetch('https://api.github.com/users/' + encodeURIComponent(username), { headers: headers });
        if (!response.ok) {
            throw new Error('User not found or API limit exceeded');
        }

        const userData = await response.json();
        const createdAt = new Date(userData.created_at);
        document.getElementById('github-created-at').textContent = createdAt.toISOString().split('T')[0];
{{- if .Revision}}
        const years = Math.floor((Date.now() - createdAt.getTime()) / (365.25 * 24 * 3600 * 1000));
        document.getElementById('github-account-age').textContent = years;
        status.textContent = 'Lookup complete';
{{- end}}
        document.getElementById('result').style.display = 'block';
    } catch (error) {
{{- if .Revision}}
        status.textContent = 'Lookup failed: ' + error.message;
{{- else}}
        alert('Error: ' + error.message);
{{- end}}
    }
});
`))
