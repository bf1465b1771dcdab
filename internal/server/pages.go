package server

const pageStyle = `
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        h1.error { color: #E22134; }
        p { color: #666; margin: 0; }
        a { color: #1DB954; }
    </style>
`

const successPage = `<!DOCTYPE html>
<html>
<head><title>Authorization Successful</title>` + pageStyle + `</head>
<body>
    <div class="container">
        <h1>✓ Authorized</h1>
        <p>You can close this tab and return to the terminal.</p>
    </div>
    <script>window.close()</script>
</body>
</html>
`

const mustAuthorizePage = `<!DOCTYPE html>
<html>
<head><title>Not Authorized Yet</title>` + pageStyle + `</head>
<body>
    <div class="container">
        <h1 class="error">Not authorized yet</h1>
        <p>No code verifier has been generated. <a href="/">You must first authorize here</a>.</p>
    </div>
</body>
</html>
`

// retryPage carries one %s verb for the escaped error description.
const retryPage = `<!DOCTYPE html>
<html>
<head><title>Authorization Failed</title>` + pageStyle + `</head>
<body>
    <div class="container">
        <h1 class="error">Could not authorize</h1>
        <p>%s. <a href="/">Click to try again</a>.</p>
    </div>
</body>
</html>
`
