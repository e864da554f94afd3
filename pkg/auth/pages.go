// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package auth

import (
	"bytes"
	"html/template"
)

// renderBootstrapPage renders the implicit-flow page. The access token
// arrives in the URL fragment, which no server ever sees; the embedded
// script lifts it out and posts it back over the same loopback origin.
func renderBootstrapPage(nonce string) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Nonce     string
		TokenPath string
	}{
		Nonce:     nonce,
		TokenPath: tokenPath,
	}
	if err := bootstrapTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderErrorPage renders the failure page shown on a denied or invalid
// callback.
func renderErrorPage(reason, description string) []byte {
	var buf bytes.Buffer
	data := struct {
		Error       string
		Description string
	}{
		Error:       reason,
		Description: description,
	}
	if err := errorTmpl.Execute(&buf, data); err != nil {
		return []byte("Authorization failed.")
	}
	return buf.Bytes()
}

var (
	bootstrapTmpl = template.Must(template.New("bootstrap").Parse(bootstrapPageTemplate))
	errorTmpl     = template.Must(template.New("error").Parse(errorPageTemplate))
)

const bootstrapPageTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Twitch Authorization</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: linear-gradient(135deg, #6441a5 0%, #9146ff 100%);
        }
        .container {
            background: white;
            padding: 3rem;
            border-radius: 10px;
            box-shadow: 0 10px 40px rgba(0,0,0,0.5);
            text-align: center;
            max-width: 400px;
        }
        h1 { color: #333; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1 id="headline">Processing authorization&hellip;</h1>
        <p id="detail"></p>
    </div>
    <script>
        const params = new URLSearchParams(window.location.hash.substring(1));
        const accessToken = params.get('access_token');
        const state = params.get('state');
        const error = params.get('error');

        const headline = document.getElementById('headline');
        const detail = document.getElementById('detail');

        if (error) {
            headline.textContent = 'Authorization failed: ' + error;
        } else if (accessToken && state === '{{.Nonce}}') {
            fetch('{{.TokenPath}}', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({
                    access_token: accessToken,
                    token_type: params.get('token_type') || 'bearer',
                    scope: (params.get('scope') || '').split(' '),
                    state: state,
                    id_token: params.get('id_token') || ''
                })
            }).then(() => {
                headline.textContent = 'Authorization successful!';
                detail.textContent = 'You can close this window and return to the application.';
            }).catch(() => {
                headline.textContent = 'Authorization failed';
                detail.textContent = 'Could not hand the token back to the application.';
            });
        } else {
            headline.textContent = 'Authorization failed: invalid state or missing token';
        }
    </script>
</body>
</html>`

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: linear-gradient(135deg, #6441a5 0%, #9146ff 100%);
        }
        .container {
            background: white;
            padding: 3rem;
            border-radius: 10px;
            box-shadow: 0 10px 40px rgba(0,0,0,0.5);
            text-align: center;
            max-width: 400px;
        }
        h1 { color: #333; margin: 0 0 1rem 0; }
        .checkmark { font-size: 64px; color: #4CAF50; margin-bottom: 1rem; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="checkmark">&#10003;</div>
        <h1>Authorization Successful!</h1>
        <p>You can close this window and return to the application.</p>
    </div>
</body>
</html>`

const errorPageTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Failed</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%);
        }
        .container {
            background: white;
            padding: 3rem;
            border-radius: 10px;
            box-shadow: 0 10px 40px rgba(0,0,0,0.2);
            text-align: center;
            max-width: 400px;
        }
        h1 { color: #333; margin: 0 0 1rem 0; }
        .error-icon { font-size: 64px; color: #f44336; margin-bottom: 1rem; }
        p { color: #666; margin: 0; }
        .error-details {
            background: #f5f5f5;
            padding: 1rem;
            border-radius: 5px;
            margin-top: 1rem;
            font-size: 0.9em;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="error-icon">&#10007;</div>
        <h1>Authorization Failed</h1>
        <p>An error occurred during authorization.</p>
        {{if .Error}}
        <div class="error-details">
            <strong>Error:</strong> {{.Error}}<br>
            {{if .Description}}<strong>Details:</strong> {{.Description}}{{end}}
        </div>
        {{end}}
        <p style="margin-top: 1rem;">Please close this window and try again.</p>
    </div>
</body>
</html>`
