/*
Package cipher resolves obfuscated stream URLs using the player script.

Formats served with a signatureCipher (or legacy cipher) field carry their
real URL, the scrambled signature and the query parameter name in a
url-encoded blob. The player script contains the function that unscrambles
the signature and, separately, the function that rewrites the "n" query
parameter.

# Methods

The signature function is resolved in order:

 1. Step parser: the helper object's reverse, splice and swap members are
    matched by regular expression and replayed in Go.
 2. goja: the extracted helper object and function are evaluated.
 3. otto: same source, used when goja rejects it.

The n function is always evaluated; a failure keeps the original value.

# Caching

Compiled scripts are cached per player URL on the JSDecipherer for ten
minutes, so concurrent requests for videos sharing a player fetch it once.

# Error Codes

  - PLAYER_JS_NOT_FOUND: no player URL while a format needs deciphering
  - PLAYER_JS_DOWNLOAD_FAILED: player script fetch failed
  - SIGNATURE_DECIPHER_FAILED: no method produced a signature
  - SIGNATURE_NOT_FOUND: the cipher blob has no url
  - SIGNATURE_TIMEOUT: script evaluation exceeded its budget
  - JS_EXECUTION_FAILED: runtime error in the extracted source
  - JS_PARSING_FAILED: signature function not found in the player script

Every *Error matches errs.ErrCipherFailed with errors.Is.
*/
package cipher
